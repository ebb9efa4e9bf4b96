package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/luaframe/internal/modules"
	"github.com/vovakirdan/luaframe/internal/registry"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules scripts can require",
	Long:  `Shows every module installed into a session, in installation order.`,
	Run:   runModules,
}

func runModules(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()

	titles := make(map[string]string)
	for _, m := range registry.List() {
		titles[m.Name] = m.Title
	}
	names := modules.Builtin()

	// Calculate column widths
	maxNameLen := 6 // "Module" header
	for _, name := range names {
		maxNameLen = max(maxNameLen, len(name))
	}

	fmt.Fprintln(out, "Installed modules:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-*s  %s\n", maxNameLen, "Module", "Description")
	fmt.Fprintf(out, "  %-*s  %s\n", maxNameLen, "------", "-----------")
	for _, name := range names {
		fmt.Fprintf(out, "  %-*s  %s\n", maxNameLen, name, titles[name])
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, `Load one with: local shader = require "ejoy2d.shader.c"`)
}
