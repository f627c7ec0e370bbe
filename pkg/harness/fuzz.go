// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package harness

import (
	"fmt"
	"strings"
)

// FuzzBackend emits harnesses for libfuzzer-style differential fuzzing:
// arguments are deserialized from raw bytes via Arbitrary, panics are caught
// and mapped to "skip" (a panic is a precondition gap, not a divergence),
// and mismatches are logged to a harness-local log line rather than
// asserted, since the fuzzer must keep running after a divergence.
type FuzzBackend struct {
	SeedLen int // length of each randomly-generated seed buffer, 0 means 64
}

func (b FuzzBackend) DeriveAttributes() string {
	return "#[derive(arbitrary::Arbitrary, Debug)]\n"
}

func (b FuzzBackend) SourceArgs(recordVar, recordType string) string {
	return fmt.Sprintf("let %s: %s = match %s::arbitrary_take_rest(u) { Ok(v) => v, Err(_) => return }; ", recordVar, recordType, recordType)
}

func (b FuzzBackend) CatchPanics() bool {
	return true
}

func (b FuzzBackend) RenderPrecondition(checkCall string) string {
	return fmt.Sprintf("if !(%s) { return; }", checkCall)
}

func (b FuzzBackend) ReportMismatch(name, result1, result2 string) string {
	return fmt.Sprintf("log_mismatch(%q);", name)
}

func (b FuzzBackend) Boilerplate() string {
	return "#![no_main]\nmod mod1;\nmod mod2;\n\nuse libfuzzer_sys::fuzz_target;\nuse arbitrary::{Arbitrary, Unstructured};\nuse std::io::Write;\n\nfn log_mismatch(name: &str) {\n    let mut f = std::fs::OpenOptions::new().create(true).append(true).open(\"mismatches.log\").unwrap();\n    writeln!(f, \"MISMATCH: {}\", name).unwrap();\n}\n"
}

// EmitDispatch renders the dispatch function that selects one of len(fns)
// check drivers based on the first input byte modulo N, feeding the
// remainder as each driver's argument source (spec.md §4.5 "For the
// fuzzing back-end only").
func EmitDispatch(fns []FunctionSpec) string {
	n := len(fns)
	var sb strings.Builder

	sb.WriteString("fuzz_target!(|data: &[u8]| {\n")
	sb.WriteString("    if data.is_empty() { return; }\n")
	sb.WriteString(fmt.Sprintf("    let selector = (data[0] as usize) %% %d;\n", n))
	sb.WriteString("    let mut u = Unstructured::new(&data[1..]);\n")
	sb.WriteString("    match selector {\n")
	for i, f := range fns {
		sb.WriteString(fmt.Sprintf("        %d => %s(&mut u),\n", i, f.CheckerFnName()))
	}
	sb.WriteString("        _ => unreachable!(),\n")
	sb.WriteString("    }\n")
	sb.WriteString("});\n")

	return sb.String()
}

// SeedBuffers returns n randomly-generated byte buffers of the configured
// length, used as initial fuzz corpus entries (spec.md §4.5 "Initial seed
// inputs"). rand is injected so callers can supply a deterministic source
// in tests.
func (b FuzzBackend) SeedBuffers(n int, rand func(int) []byte) [][]byte {
	seedLen := b.SeedLen
	if seedLen == 0 {
		seedLen = 64
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = rand(seedLen)
	}
	return out
}
