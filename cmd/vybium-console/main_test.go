package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func TestHashCommand(t *testing.T) {
	var first, second map[string]string
	require.NoError(t, json.Unmarshal(run(t, "hash", "psd4", "1", "2", "3"), &first))
	require.NoError(t, json.Unmarshal(run(t, "hash", "psd4", "1", "2", "3", "--domain", "prf"), &second))
	require.Equal(t, "commitment", first["domain"])
	require.NotEmpty(t, first["digest"])
	require.NotEqual(t, first["digest"], second["digest"])
}

func TestVectorsAreDeterministic(t *testing.T) {
	a := run(t, "vectors", "-n", "1", "--label", "test")
	b := run(t, "vectors", "-n", "1", "--label", "test")
	require.Equal(t, a, b)

	var vectors []Vector
	require.NoError(t, json.Unmarshal(a, &vectors))
	require.Len(t, vectors, 1)
	require.Len(t, vectors[0].Hashes, 10)
	require.Len(t, vectors[0].Commitments, 6)
}

func TestSignAndVerifyCommands(t *testing.T) {
	var signed map[string]string
	require.NoError(t, json.Unmarshal(run(t, "sign", "--seed", "9", "4", "5"), &signed))

	var verified map[string]bool
	out := run(t, "verify", "--key", signed["verifying_key"], "--signature", signed["signature"], "4", "5")
	require.NoError(t, json.Unmarshal(out, &verified))
	require.True(t, verified["valid"])
}

func TestMerkleProveCommand(t *testing.T) {
	var rooted, proved map[string]string
	require.NoError(t, json.Unmarshal(run(t, "merkle", "root", "--depth", "4", "1", "2", "3"), &rooted))
	require.NoError(t, json.Unmarshal(run(t, "merkle", "prove", "--depth", "4", "--index", "2", "1", "2", "3"), &proved))
	require.Equal(t, rooted["root"], proved["root"])
	require.NotEmpty(t, proved["path"])
}

func TestMerkleFitAndSnapshots(t *testing.T) {
	t.Cleanup(func() {
		merkleFit, merkleSave = false, ""
		merkleProfile = string(vybiumconsole.ProfilePoseidon)
		globalFlags.ConfigPath, globalFlags.Depth = "", 0
	})

	var fitted, fixed map[string]string
	require.NoError(t, json.Unmarshal(run(t, "merkle", "root", "--fit", "1", "2", "3"), &fitted))
	require.NoError(t, json.Unmarshal(run(t, "merkle", "root", "--fit=false", "--depth", "2", "1", "2", "3"), &fixed))
	require.Equal(t, fixed["root"], fitted["root"])

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	dir := filepath.Join(t.TempDir(), "snapshots")
	require.NoError(t, os.WriteFile(cfg, []byte("snapshot_dir: "+dir+"\n"), 0o600))

	var saved, loaded map[string]string
	out := run(t, "merkle", "root", "--config", cfg, "-p", "poseidon2", "--depth", "4", "--save", "ledger", "5", "6")
	require.NoError(t, json.Unmarshal(out, &saved))
	out = run(t, "merkle", "load", "--config", cfg, "-p", "poseidon2", "--save", "", "ledger")
	require.NoError(t, json.Unmarshal(out, &loaded))
	require.Equal(t, saved["root"], loaded["root"])
}
