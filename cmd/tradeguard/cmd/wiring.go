package cmd

import (
	"fmt"

	"tradeguard/config"
	"tradeguard/journal"
	"tradeguard/profile"
)

func buildJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		return journal.NewCSV(jc.DecisionsFile, jc.ExitsFile)
	case "none", "":
		return journal.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

func buildRegistry(c *config.Config) (*profile.Registry, error) {
	if c.ProfilesFile == "" {
		return profile.NewRegistry(), nil
	}
	return profile.NewRegistryFromFile(c.ProfilesFile)
}
