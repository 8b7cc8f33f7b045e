package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/state"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
	"github.com/LeJamon/goEscrowd/internal/storage/database/backends"
)

// StateFile is a dump of ledger state
type StateFile struct {
	Entries []StateFileEntry `json:"entries"`
}

// StateFileEntry is one ledger entry of a StateFile
type StateFileEntry struct {
	Index   string                 `json:"index"`
	Type    string                 `json:"type"`
	DataHex string                 `json:"data_hex"`
	Decoded map[string]interface{} `json:"decoded,omitempty"`
}

var (
	dumpFilterType string
	dumpOutput     string
	compareShowAll bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the node database offline",
	Long: `Read ledger state straight from the configured node database. The
daemon must not be running against the same database.`,
}

var stateDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump every ledger entry as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := dumpState(dumpFilterType)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return err
		}
		if dumpOutput == "" {
			fmt.Println(string(out))
			return nil
		}
		return os.WriteFile(dumpOutput, append(out, '\n'), 0o644)
	},
}

var stateCompareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two state dump files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadStateFile(args[0])
		if err != nil {
			return err
		}
		b, err := loadStateFile(args[1])
		if err != nil {
			return err
		}
		diff := compareStates(a, b)
		for _, line := range diff.lines(compareShowAll) {
			fmt.Println(line)
		}
		fmt.Printf("\n%d only in %s, %d only in %s, %d differ, %d equal\n",
			len(diff.onlyA), args[0], len(diff.onlyB), args[1], len(diff.changed), diff.equal)
		if !diff.empty() {
			return fmt.Errorf("state differs")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateDumpCmd, stateCompareCmd)
	stateDumpCmd.Flags().StringVar(&dumpFilterType, "type", "", "only dump entries of this type (Mint, TokenAccount, Offer, Receipt)")
	stateDumpCmd.Flags().StringVarP(&dumpOutput, "out", "o", "", "write the dump to this file")
	stateCompareCmd.Flags().BoolVar(&compareShowAll, "all", false, "also list equal entries")
}

func dumpState(filterType string) (*StateFile, error) {
	db, err := backends.Open(backends.Config{
		Type:      cfg.NodeDB.Type,
		Path:      cfg.ResolvePath(cfg.NodeDB.Path),
		CacheSize: cfg.NodeDB.CacheSize,
	})
	if err != nil {
		return nil, err
	}
	store, err := state.New(db, 0)
	if err != nil {
		db.Close()
		return nil, err
	}
	defer store.Close()

	file := &StateFile{Entries: []StateFileEntry{}}
	var decodeErr error
	err = store.ForEach(func(key [32]byte, data []byte) bool {
		typ := sle.EntryType(data).String()
		if filterType != "" && !strings.EqualFold(filterType, typ) {
			return true
		}
		fields, err := sle.Fields(data)
		if err != nil {
			decodeErr = fmt.Errorf("entry %X: %w", key, err)
			return false
		}
		file.Entries = append(file.Entries, StateFileEntry{
			Index:   strings.ToUpper(hex.EncodeToString(key[:])),
			Type:    typ,
			DataHex: strings.ToUpper(hex.EncodeToString(data)),
			Decoded: fields,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return file, decodeErr
}

func loadStateFile(path string) (*StateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file StateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &file, nil
}

type stateDiff struct {
	onlyA, onlyB []StateFileEntry
	changed      [][2]StateFileEntry
	same         []StateFileEntry
	equal        int
}

func (d *stateDiff) empty() bool {
	return len(d.onlyA) == 0 && len(d.onlyB) == 0 && len(d.changed) == 0
}

func (d *stateDiff) lines(showAll bool) []string {
	var lines []string
	for _, e := range d.onlyA {
		lines = append(lines, fmt.Sprintf("- %s %s", e.Type, e.Index))
	}
	for _, e := range d.onlyB {
		lines = append(lines, fmt.Sprintf("+ %s %s", e.Type, e.Index))
	}
	for _, pair := range d.changed {
		lines = append(lines, fmt.Sprintf("~ %s %s", pair[0].Type, pair[0].Index))
		for _, field := range changedFields(pair[0].Decoded, pair[1].Decoded) {
			lines = append(lines, fmt.Sprintf("    %s: %v -> %v", field, pair[0].Decoded[field], pair[1].Decoded[field]))
		}
	}
	if showAll {
		for _, e := range d.same {
			lines = append(lines, fmt.Sprintf("= %s %s", e.Type, e.Index))
		}
	}
	return lines
}

// compareStates matches entries by index and compares their raw data
func compareStates(a, b *StateFile) *stateDiff {
	byIndex := make(map[string]StateFileEntry, len(b.Entries))
	for _, e := range b.Entries {
		byIndex[strings.ToUpper(e.Index)] = e
	}

	diff := &stateDiff{}
	for _, ea := range a.Entries {
		idx := strings.ToUpper(ea.Index)
		eb, ok := byIndex[idx]
		if !ok {
			diff.onlyA = append(diff.onlyA, ea)
			continue
		}
		delete(byIndex, idx)
		if strings.EqualFold(ea.DataHex, eb.DataHex) {
			diff.equal++
			diff.same = append(diff.same, ea)
		} else {
			diff.changed = append(diff.changed, [2]StateFileEntry{ea, eb})
		}
	}
	for _, eb := range byIndex {
		diff.onlyB = append(diff.onlyB, eb)
	}
	sort.Slice(diff.onlyB, func(i, j int) bool { return diff.onlyB[i].Index < diff.onlyB[j].Index })
	return diff
}

func changedFields(a, b map[string]interface{}) []string {
	names := map[string]bool{}
	for k := range a {
		names[k] = true
	}
	for k := range b {
		names[k] = true
	}
	var changed []string
	for k := range names {
		if !reflect.DeepEqual(a[k], b[k]) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
