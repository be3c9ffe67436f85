package cmd

import (
	"context"
	"os"

	"github.com/rm-hull/alphablend/internal"
)

const remoteApiKeyEnv = "ALPHABLEND_REMOTE_API_KEY"

func newRemoteClient() *internal.RemoteClient {
	return internal.NewRemoteClient(os.Getenv(remoteApiKeyEnv))
}

func Batch(ctx context.Context, manifestPath, rootDir string, poolSize int) error {
	internal.StartupDiagnostics()
	return internal.RunBatch(ctx, manifestPath, rootDir, poolSize, newRemoteClient())
}
