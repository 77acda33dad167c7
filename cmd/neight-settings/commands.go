package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/neight-editor/neight/internal/settings"
)

func openStore() (*settings.Store, error) {
	st, err := settings.NewStore(appName)
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}
	return st, nil
}

// loadRecord loads the record, downgrading a corrupt file to a warning the
// way the editor itself does.
func loadRecord(st *settings.Store) (settings.Record, error) {
	rec, err := st.Load()
	if err != nil {
		var corrupt *settings.CorruptFileError
		if !errors.As(err, &corrupt) {
			return settings.Record{}, err
		}
		printWarning("%v (using defaults)", corrupt)
	}
	return rec, nil
}

// --- location ---

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Show where the settings file lives",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		return runLocation(cmd.OutOrStdout(), st)
	},
}

func runLocation(w io.Writer, st *settings.Store) error {
	primary, fallback := st.Candidates()

	fmt.Fprintln(w, "Primary location (application folder):")
	fmt.Fprintf(w, "  %s\n", primary)
	fmt.Fprintf(w, "  exists:   %s\n", yesNo(pathExists(primary)))
	if st.PrimaryWritable() {
		fmt.Fprintln(w, "  writable: yes")
	} else {
		fmt.Fprintln(w, "  writable: no (saves go to the fallback)")
	}

	fmt.Fprintln(w, "Fallback location (per-user app data):")
	if fallback == "" {
		fmt.Fprintln(w, "  unresolvable: no home directory")
	} else {
		fmt.Fprintf(w, "  %s\n", fallback)
		fmt.Fprintf(w, "  exists:   %s\n", yesNo(pathExists(fallback)))
	}

	active, err := st.ActiveLocation()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Active location:")
	fmt.Fprintf(w, "  %s\n", active)
	return nil
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// --- show / get ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print all settings keys with their current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		return runShow(cmd.OutOrStdout(), st)
	},
}

func runShow(w io.Writer, st *settings.Store) error {
	rec, err := loadRecord(st)
	if err != nil {
		return err
	}
	for _, kv := range settings.ShowAll(rec) {
		fmt.Fprintf(w, "%-27s %s\n", kv.Key, kv.Value)
	}
	return nil
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of one settings key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		return runGet(cmd.OutOrStdout(), st, args[0])
	},
}

func runGet(w io.Writer, st *settings.Store, key string) error {
	rec, err := loadRecord(st)
	if err != nil {
		return err
	}
	val, err := settings.GetKey(rec, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, val)
	return nil
}

// --- set / reset ---

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one settings key and save",
	Long: `Change one settings key and save.

Examples:
  neight-settings set font_size 14
  neight-settings set word_wrap false
  neight-settings set autosave_interval_minutes 15`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		return runSet(st, args[0], args[1])
	},
}

func runSet(st *settings.Store, key, value string) error {
	rec, err := loadRecord(st)
	if err != nil {
		return err
	}
	if err := settings.SetKey(&rec, key, value); err != nil {
		return err
	}
	outcome, err := st.Save(rec)
	if err != nil {
		return err
	}
	reportSave(outcome)
	return nil
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		outcome, err := st.Save(settings.Defaults())
		if err != nil {
			return err
		}
		reportSave(outcome)
		return nil
	},
}

func reportSave(outcome settings.SaveOutcome) {
	printSuccess("Saved %s", outcome.Path)
	if outcome.Migrated {
		printWarning("A stale settings file remains at the primary location; the %s copy is canonical now", outcome.Location)
	}
}
