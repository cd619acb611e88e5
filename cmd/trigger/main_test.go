package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCall(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantTool string
		wantArgs map[string]any
	}{
		{"run search", []string{"run-search", "abc"}, "run_search", map[string]any{"search_id": "abc"}},
		{"run provider", []string{"run-provider", "indeed"}, "run_provider", map[string]any{"provider": "indeed"}},
		{"list runs with limit", []string{"list-runs", "abc", "5"}, "list_runs", map[string]any{"search_id": "abc", "limit": 5}},
		{"export runs", []string{"export-runs", "abc", "sheet", "Runs"}, "export_runs", map[string]any{"search_id": "abc", "spreadsheet_id": "sheet", "tab": "Runs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := toolCall(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTool, params.Name)
			assert.Equal(t, tt.wantArgs, params.Arguments)
		})
	}
}

func TestToolCall_Invalid(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"run-search"},
		{"list-runs", "abc", "many"},
		{"export-runs", "abc"},
		{"delete-everything", "now"},
	} {
		_, err := toolCall(args)
		assert.Error(t, err, "%v", args)
	}
}
