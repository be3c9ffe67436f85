package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Resize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// GaussianBlur defaults to true when omitted.
	GaussianBlur *bool `json:"gaussianBlur,omitempty"`
}

func (r *Resize) Blur() bool {
	return r.GaussianBlur == nil || *r.GaussianBlur
}

type Job struct {
	Id       string   `json:"id"`
	Input    string   `json:"input"`
	Output   string   `json:"output"`
	Resize   *Resize  `json:"resize,omitempty"`
	Kernel   string   `json:"kernel,omitempty"`
	Overlays []string `json:"overlays,omitempty"`
}

type Manifest struct {
	Jobs []Job `json:"jobs"`
}

func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var m Manifest
	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks that every job is addressable and writes to a distinct output.
func (m *Manifest) Validate() error {
	if len(m.Jobs) == 0 {
		return errors.New("no jobs defined")
	}
	ids := make(map[string]bool, len(m.Jobs))
	outputs := make(map[string]string, len(m.Jobs))
	for i, job := range m.Jobs {
		if job.Id == "" {
			return fmt.Errorf("job %d has no id", i)
		}
		if ids[job.Id] {
			return fmt.Errorf("duplicate job id %q", job.Id)
		}
		ids[job.Id] = true
		if job.Input == "" || job.Output == "" {
			return fmt.Errorf("job %q needs both an input and an output", job.Id)
		}
		if other, ok := outputs[job.Output]; ok {
			return fmt.Errorf("jobs %q and %q write to the same output %s", other, job.Id, job.Output)
		}
		outputs[job.Output] = job.Id
	}
	return nil
}
