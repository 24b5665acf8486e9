package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioCommand(t *testing.T) {
	tests := []struct {
		name        string
		scenario    string
		opts        scenarioOptions
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "array copy",
			scenario:    "array-copy",
			opts:        scenarioOptions{allocator: "heap"},
			wantContain: []string{"STEP", "bind h1 (5 elements)", "clone h2 from h1", "release h2"},
		},
		{
			name:        "reassign eager",
			scenario:    "reassign",
			opts:        scenarioOptions{allocator: "heap"},
			wantContain: []string{"reassign h to B", "A freed on reassignment"},
		},
		{
			name:        "reassign lazy",
			scenario:    "reassign",
			opts:        scenarioOptions{allocator: "heap", lazy: true},
			wantContain: []string{"A still tracked (refs=0), awaiting sweep"},
		},
		{
			name:     "unknown scenario",
			scenario: "bogus",
			opts:     scenarioOptions{allocator: "heap"},
			wantErr:  true,
		},
		{
			name:     "unknown allocator",
			scenario: "reassign",
			opts:     scenarioOptions{allocator: "arena"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)

			output, err := captureOutput(t, func() error {
				return runScenario(tt.scenario, tt.opts)
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestScenarioJSON(t *testing.T) {
	cases := []struct {
		name     string
		scenario string
		lazy     bool
		want     []step
	}{
		{
			name:     "array copy",
			scenario: "array-copy",
			want: []step{
				{Step: "bind h1 (5 elements)", Refs: 1, Live: 1},
				{Step: "clone h2 from h1", Refs: 2, Live: 1},
				{Step: "release h1", Refs: 1, Live: 1},
				{Step: "release h2", Refs: 0, Live: 0, Freed: 1},
			},
		},
		{
			name:     "reassign eager",
			scenario: "reassign",
			want: []step{
				{Step: "bind h to A", Refs: 1, Live: 1},
				{Step: "reassign h to B", Refs: 1, Live: 1, Freed: 1, Note: "A freed on reassignment"},
				{Step: "release h", Refs: 0, Live: 0, Freed: 2},
			},
		},
		{
			name:     "reassign lazy",
			scenario: "reassign",
			lazy:     true,
			want: []step{
				{Step: "bind h to A", Refs: 1, Live: 1},
				{Step: "reassign h to B", Refs: 1, Live: 2, Note: "A still tracked (refs=0), awaiting sweep"},
				{Step: "release h", Refs: 0, Live: 0, Freed: 2},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetGlobals(t)
			jsonOut = true

			output, err := captureOutput(t, func() error {
				return runScenario(tc.scenario, scenarioOptions{allocator: "heap", lazy: tc.lazy})
			})
			require.NoError(t, err)
			assertJSON(t, output)

			var got []step
			require.NoError(t, json.Unmarshal([]byte(output), &got))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestScenarioMmap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap-backed scenario in short mode")
	}
	resetGlobals(t)
	if _, err := newAllocator("mmap"); err != nil {
		t.Skipf("mmap allocator unavailable: %v", err)
	}

	output, err := captureOutput(t, func() error {
		return runScenario("array-copy", scenarioOptions{allocator: "mmap"})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"release h2"})
}

func TestNewAllocatorNames(t *testing.T) {
	a, err := newAllocator("heap")
	require.NoError(t, err)
	require.Equal(t, "heap", a.Name())

	_, err = newAllocator("")
	require.Error(t, err)
}
