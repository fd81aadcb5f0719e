package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/vybium/vybium-console/internal/vybium-console/utils"
	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

func parseFields(args []string) ([]vybiumconsole.Field, error) {
	out := make([]vybiumconsole.Field, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = vybiumconsole.FieldFromUint64(v)
	}
	return out, nil
}

func parseBits(arg string) ([]bool, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
	if err != nil {
		return nil, fmt.Errorf("bit string: %w", err)
	}
	return utils.BytesToBitsLE(b), nil
}

func parseHex(arg string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(arg, "0x"))
}

func fieldStrings(fs []vybiumconsole.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.String()
	}
	return out
}
