// Package vybiumconsole provides the native cryptographic console of the
// Vybium network: field and group arithmetic, domain-separated hashes,
// commitments, a PRF, Schnorr signatures and Merkle trees.
//
// Every primitive is bit-for-bit compatible with its in-circuit
// counterpart, so changing a domain tag, a padding rule or a parameter is a
// breaking format change. The tag set is versioned by DomainVersion.
//
// # Quick Start
//
// Creating a console and hashing:
//
//	console, err := vybiumconsole.New(vybiumconsole.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	digest, err := console.HashPSD2(vybiumconsole.DomainCommitment, []vybiumconsole.Field{
//		vybiumconsole.FieldFromUint64(1),
//		vybiumconsole.FieldFromUint64(2),
//	})
//
// Signing and verifying:
//
//	kp, err := console.GenerateKeyPair(rand.Reader)
//	sig, err := console.Sign(kp.SigningKey, message, rand.Reader)
//	ok := console.Verify(kp.VerifyingKey, message, sig)
//
// Building a Merkle tree and checking an inclusion path:
//
//	tree, err := console.MerkleTreeBHP(16, leaves)
//	path, err := tree.Prove(2)
//	ok := console.VerifyMerklePathBHP(path, tree.Root(), leaves[2])
//
// A verifier needs only the path, the root and the leaf; paths hold no
// reference to the tree that produced them.
//
// # Merkle profiles
//
// The hash family of a tree is a configuration point:
//
// - bhp: bit-string leaves, BHP1024 leaves, BHP512 nodes
// - poseidon: field leaves, Poseidon rate 4 leaves, rate 2 nodes
// - poseidon2: field leaves, Poseidon2 Merkle–Damgård
// - goldilocks: Goldilocks leaves, Tip5 digests from vybium-crypto
//
// Empty slots hold a published padding digest, the hash of the empty input
// under DomainMerklePadding.
//
// # Concurrency
//
// A Console is immutable after New and safe for concurrent use. Trees allow
// concurrent Root and Prove calls; Update and Append are exclusive.
//
// # Architecture
//
// - pkg/vybium-console/: Public API (this package)
// - internal/vybium-console/: Private implementation (not importable)
package vybiumconsole
