package main

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in   []string
		cmd  string
		rest []string
	}{
		{nil, "", nil},
		{[]string{"check"}, "check", []string{}},
		{[]string{"check", "--db-driver=sqlite"}, "check", []string{"--db-driver=sqlite"}},
		{[]string{"--db-driver=sqlite"}, "", []string{"--db-driver=sqlite"}},
	}
	for _, tc := range cases {
		cmd, rest := splitCommand(tc.in)
		if cmd != tc.cmd || !reflect.DeepEqual(rest, tc.rest) {
			t.Errorf("splitCommand(%v) = (%q, %v), want (%q, %v)", tc.in, cmd, rest, tc.cmd, tc.rest)
		}
	}
}

func sqliteArgs(url string) []string {
	return []string{"--db-driver=sqlite", "--db-url=" + url, "--db-max-retries=0", "--log-level=error"}
}

func TestRun_ApplyThenCheck(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inquiries.db")

	if err := run(ctx, sqliteArgs(path)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := run(ctx, append([]string{"check"}, sqliteArgs(path)...)); err != nil {
		t.Fatalf("check after apply: %v", err)
	}
}

func TestRun_CheckWithoutSchemaFails(t *testing.T) {
	err := run(context.Background(), append([]string{"check"}, sqliteArgs(":memory:")...))
	if err == nil {
		t.Fatal("expected an error for a store without the inquiries table")
	}
}

func TestRun_ApplyUnreachableStoreReturnsError(t *testing.T) {
	// a directory cannot be opened as a database file
	err := run(context.Background(), sqliteArgs(t.TempDir()))
	if err == nil {
		t.Fatal("expected an error for an unreachable store")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"drop"})
	if !errors.Is(err, errUnknownCommand) {
		t.Errorf("expected errUnknownCommand, got %v", err)
	}
}
