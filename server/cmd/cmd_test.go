package cmd_test

import (
	"testing"

	"github.com/atlas-engine/atlas/server/cmd"
)

type fakeSource struct {
	name string
	last *cmd.Output
}

func (f *fakeSource) Name() string                   { return f.name }
func (f *fakeSource) SendCommandOutput(o *cmd.Output) { f.last = o }

func TestExecuteLineUnknownCommand(t *testing.T) {
	src := &fakeSource{name: "test"}
	out := cmd.ExecuteLine(src, "foobar")
	if len(out.Lines()) != 1 || out.Lines()[0] != "Unknown command: foobar" {
		t.Fatalf("got %v, want [\"Unknown command: foobar\"]", out.Lines())
	}
}

func TestExecuteLineEmptyIsNoop(t *testing.T) {
	src := &fakeSource{name: "test"}
	out := cmd.ExecuteLine(src, "   ")
	if len(out.Lines()) != 0 {
		t.Fatalf("got %v, want no lines", out.Lines())
	}
}

func TestExecuteLineStripsLeadingSlash(t *testing.T) {
	cmd.Register(cmd.New("ping", "", "", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		o.Print("pong")
	}))
	src := &fakeSource{name: "test"}
	out := cmd.ExecuteLine(src, "/ping")
	if len(out.Lines()) != 1 || out.Lines()[0] != "pong" {
		t.Fatalf("got %v, want [\"pong\"]", out.Lines())
	}
}

func TestExecuteLinePassesArgs(t *testing.T) {
	var captured []string
	cmd.Register(cmd.New("echo", "", "", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		captured = args
	}))
	src := &fakeSource{name: "test"}
	cmd.ExecuteLine(src, "echo a b c")
	if len(captured) != 3 || captured[0] != "a" || captured[2] != "c" {
		t.Fatalf("got %v, want [a b c]", captured)
	}
}

func TestRegisterByAliasFindsAllAliases(t *testing.T) {
	cmd.Register(cmd.New("gamemode", "", "", []string{"gm"}, func(src cmd.Source, o *cmd.Output, args []string) {}))
	if _, ok := cmd.ByAlias("gamemode"); !ok {
		t.Fatal("expected to find command by name")
	}
	if _, ok := cmd.ByAlias("gm"); !ok {
		t.Fatal("expected to find command by alias")
	}
}
