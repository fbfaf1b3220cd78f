package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hachiko/animatch/internal/config"
	"github.com/hachiko/animatch/internal/logging"
	"github.com/hachiko/animatch/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load catalog entries from a JSON file",
	Long:  "Seed reads a JSON array of anime entries (id, title, score, type, episodes, members, rank, popularity, genres, studios) and upserts them into the catalog.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "path to the catalog JSON file")
	seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var entries []store.Anime
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for i := range entries {
		if entries[i].ID == 0 || entries[i].Title == "" {
			return fmt.Errorf("seed entry %d: id and title are required", i)
		}
		if err := db.UpsertAnime(&entries[i]); err != nil {
			return fmt.Errorf("seed entry %d (%s): %w", i, entries[i].Title, err)
		}
	}

	logging.Info().Int("entries", len(entries)).Str("db", dbPath).Msg("catalog seeded")
	return nil
}
