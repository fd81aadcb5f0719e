package main

import (
	"go.uber.org/zap"

	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

func zapAlgorithm(name string) zap.Field {
	return zap.String("algorithm", name)
}

func zapDomain(d vybiumconsole.Domain) zap.Field {
	return zap.Stringer("domain", d)
}
