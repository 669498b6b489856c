package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

const breakdownIndent = "  "

// BreakdownCmd splits the app state of a genesis into one file per module.
func BreakdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "breakdown [genesis] [dir]",
		Short: "Write every app_state module of a genesis to its own file",
		Long: `Write every app_state module of a genesis to <dir>/<module>.json.

Each file holds a single object keyed by the module name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			genesis, err := readGenesis(args[0])
			if err != nil {
				return err
			}
			written, err := breakdown(genesis, args[1])
			if err != nil {
				return err
			}
			cmd.Printf("Wrote %d modules to %s\n", len(written), args[1])
			return nil
		},
	}
}

// breakdown writes the modules of genesis to dir and returns the file paths
// in app_state order.
func breakdown(genesis *document.Node, dir string) ([]string, error) {
	appState, err := genesis.GetObject("app_state")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidUsage, "creating %s: %s", dir, err)
	}

	var written []string
	for _, module := range appState.Keys() {
		if strings.ContainsAny(module, `/\`) || module == "." || module == ".." {
			return written, errorsmod.Wrapf(types.ErrSchema, "module name %q is not a file name", module)
		}
		state, _ := appState.Get(module)

		wrapped := document.NewObject()
		wrapped.Set(module, state)

		path := filepath.Join(dir, module+".json")
		if err := writeGenesis(path, document.FromObject(wrapped), breakdownIndent); err != nil {
			return written, errorsmod.Wrap(err, module)
		}
		written = append(written, path)
	}
	return written, nil
}
