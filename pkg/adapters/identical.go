// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adapters

import (
	"context"

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// IdenticalAdapter is the one adapter with no subprocess: it declares ok for
// exactly the CommonFunctions whose source texts are byte-equal (spec.md
// §4.6 "Identical").
type IdenticalAdapter struct{}

func (IdenticalAdapter) Name() string { return "identical" }

func (IdenticalAdapter) Polarity() checker.Polarity { return checker.Formal }

func (IdenticalAdapter) Check(_ context.Context, view checker.StateView) checker.CheckResult {
	var ok []vpath.Path
	for _, name := range view.UnderChecking() {
		cf, found := view.Common(name)
		if found && cf.Body1 == cf.Body2 {
			ok = append(ok, name)
		}
	}
	return checker.CheckResult{Ok: ok}
}
