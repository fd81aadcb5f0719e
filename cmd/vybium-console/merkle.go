package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/utils"
	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

var (
	merkleProfile string
	merkleIndex   uint64
	merkleSave    string
	merkleFit     bool
)

var merkleCmd = &cobra.Command{
	Use:   "merkle",
	Short: "Build Merkle trees and paths",
}

var merkleRootCmd = &cobra.Command{
	Use:   "root <leaf...>",
	Short: "Compute the root of a tree",
	Long: `Compute the root of a tree over the given leaves.

Leaves are hex bit strings for the bhp profile and decimal field elements
(one element per leaf) for the poseidon and poseidon2 profiles. With
--fit the tree uses the smallest depth that holds the leaves instead of
the configured depth. With --save the leaves are stored as a snapshot in
the configured snapshot directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _, err := buildTree(cmd.Context(), args, false)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{
			"profile": merkleProfile,
			"root":    root.String(),
		})
	},
}

var merkleProveCmd = &cobra.Command{
	Use:   "prove --index <i> <leaf...>",
	Short: "Compute the root of a tree and the path of one leaf",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, path, err := buildTree(cmd.Context(), args, true)
		if err != nil {
			return err
		}
		enc, err := vybiumconsole.MarshalMerklePath(path)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{
			"profile": merkleProfile,
			"root":    root.String(),
			"index":   fmt.Sprint(merkleIndex),
			"path":    hex.EncodeToString(enc),
		})
	},
}

var merkleLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Rebuild a saved tree and print its root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var root vybiumconsole.Field
		switch vybiumconsole.MerkleProfile(merkleProfile) {
		case vybiumconsole.ProfileBHP:
			tree, err := console.LoadBHPTree(ctx, store, args[0])
			if err != nil {
				return err
			}
			root = tree.Root()
		case vybiumconsole.ProfilePoseidon:
			tree, err := console.LoadPSDTree(ctx, store, args[0])
			if err != nil {
				return err
			}
			root = tree.Root()
		case vybiumconsole.ProfilePoseidon2:
			tree, err := console.LoadPoseidon2Tree(ctx, store, args[0])
			if err != nil {
				return err
			}
			root = tree.Root()
		default:
			return fmt.Errorf("profile %q cannot be loaded", merkleProfile)
		}
		return printJSON(cmd, map[string]string{"name": args[0], "root": root.String()})
	},
}

// buildTree returns the root and, when prove is set, the path of
// merkleIndex. With --save the tree is also stored as a snapshot.
func buildTree(ctx context.Context, args []string, prove bool) (vybiumconsole.Field, *vybiumconsole.MerklePath, error) {
	switch vybiumconsole.MerkleProfile(merkleProfile) {
	case vybiumconsole.ProfileBHP:
		leaves := make([][]bool, len(args))
		for i, a := range args {
			bits, err := parseBits(a)
			if err != nil {
				return vybiumconsole.Field{}, nil, err
			}
			leaves[i] = bits
		}
		tree, err := console.MerkleTreeBHP(treeDepth(len(leaves)), leaves)
		if err != nil {
			return vybiumconsole.Field{}, nil, err
		}
		if merkleSave != "" {
			err := saveSnapshot(func(store vybiumconsole.SnapshotStore) error {
				return console.SaveBHPTree(ctx, store, merkleSave, tree)
			})
			if err != nil {
				return vybiumconsole.Field{}, nil, err
			}
		}
		return rootAndPath(tree, prove)

	case vybiumconsole.ProfilePoseidon, vybiumconsole.ProfilePoseidon2:
		fs, err := parseFields(args)
		if err != nil {
			return vybiumconsole.Field{}, nil, err
		}
		leaves := make([][]vybiumconsole.Field, len(fs))
		for i := range fs {
			leaves[i] = fs[i : i+1]
		}
		build, save := console.MerkleTreePSD, console.SavePSDTree
		if merkleProfile == string(vybiumconsole.ProfilePoseidon2) {
			build, save = console.MerkleTreePoseidon2, console.SavePoseidon2Tree
		}
		tree, err := build(treeDepth(len(leaves)), leaves)
		if err != nil {
			return vybiumconsole.Field{}, nil, err
		}
		if merkleSave != "" {
			err := saveSnapshot(func(store vybiumconsole.SnapshotStore) error {
				return save(ctx, store, merkleSave, tree)
			})
			if err != nil {
				return vybiumconsole.Field{}, nil, err
			}
		}
		return rootAndPath(tree, prove)

	default:
		return vybiumconsole.Field{}, nil, fmt.Errorf("unknown profile %q", merkleProfile)
	}
}

// treeDepth returns 0, the configured depth, unless --fit is set
func treeDepth(leaves int) int {
	if !merkleFit {
		return 0
	}
	return utils.DepthFor(uint64(leaves))
}

type provingTree interface {
	Root() vybiumconsole.Field
	Prove(index uint64) (*vybiumconsole.MerklePath, error)
}

func rootAndPath(tree provingTree, prove bool) (vybiumconsole.Field, *vybiumconsole.MerklePath, error) {
	if !prove {
		return tree.Root(), nil, nil
	}
	path, err := tree.Prove(merkleIndex)
	if err != nil {
		return vybiumconsole.Field{}, nil, err
	}
	return tree.Root(), path, nil
}

func openStore() (vybiumconsole.SnapshotStore, error) {
	if console.Config().SnapshotDir == "" {
		return nil, fmt.Errorf("snapshot_dir is not configured")
	}
	return console.OpenSnapshotStore()
}

func saveSnapshot(save func(vybiumconsole.SnapshotStore) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := save(store); err != nil {
		return err
	}
	logger.Info("saved tree snapshot", zap.String("name", merkleSave), zap.String("profile", merkleProfile))
	return nil
}

func init() {
	merkleCmd.PersistentFlags().StringVarP(&merkleProfile, "profile", "p", string(vybiumconsole.ProfilePoseidon), "tree profile: bhp|poseidon|poseidon2")
	merkleCmd.PersistentFlags().StringVar(&merkleSave, "save", "", "store the leaves under this snapshot name")
	merkleCmd.PersistentFlags().BoolVar(&merkleFit, "fit", false, "use the smallest depth that holds the leaves")
	merkleProveCmd.Flags().Uint64VarP(&merkleIndex, "index", "i", 0, "leaf index to prove")

	merkleCmd.AddCommand(merkleRootCmd)
	merkleCmd.AddCommand(merkleProveCmd)
	merkleCmd.AddCommand(merkleLoadCmd)
}
