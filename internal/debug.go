package internal

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
)

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET)`)

func ShowVersion() {
	log.Printf("Version: %s\n", versioninfo.Short())
}

// EnvironmentVars logs the process environment sorted by key, with secrets masked.
func EnvironmentVars() {
	log.Println("Environment variables")
	for _, line := range maskEnvironment(os.Environ()) {
		log.Printf("  %s\n", line)
	}
}

func maskEnvironment(environ []string) []string {
	entries := make([][]string, 0, len(environ))
	for _, entry := range environ {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) == 1 {
			kv = append(kv, "")
		}
		entries = append(entries, kv)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i][0] < entries[j][0]
	})

	lines := make([]string, 0, len(entries))
	for _, kv := range entries {
		if sensitiveRegex.MatchString(kv[0]) {
			lines = append(lines, fmt.Sprintf("%s: ********", kv[0]))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", kv[0], kv[1]))
		}
	}
	return lines
}

func UserInfo() {
	log.Printf("PID: %d", os.Getpid())
	currentUser, err := user.Current()
	if err != nil {
		log.Printf("Error getting current user: %v", err)
	} else {
		log.Printf("User: uid=%s(%s) gid=%s", currentUser.Uid, currentUser.Username, currentUser.Gid)
	}
	groups, err := os.Getgroups()
	if err != nil {
		log.Printf("Error getting groups: %v", err)
		return
	}
	groupNames := make([]string, 0, len(groups))
	for _, gid := range groups {
		group, err := user.LookupGroupId(strconv.Itoa(gid))
		if err != nil {
			groupNames = append(groupNames, strconv.Itoa(gid))
		} else {
			groupNames = append(groupNames, fmt.Sprintf("%s(%s)", group.Name, group.Gid))
		}
	}
	log.Printf("Groups: %v", groupNames)
}

// StartupDiagnostics logs version, user and environment details before a long-running command.
func StartupDiagnostics() {
	ShowVersion()
	UserInfo()
	EnvironmentVars()
}
