//go:build mage

package main

import (
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Engine groups targets that drive the built CLI.
type Engine mg.Namespace

// Run fetches and processes papers from the last days days.
func (Engine) Run(days int) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "run", strconv.Itoa(days))
}

// Blogs runs the engine and also generates blog drafts.
func (Engine) Blogs(days int) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "run", strconv.Itoa(days), "--blogs")
}

// Ingest summarizes and stores one paper given its title and abstract.
func (Engine) Ingest(title, abstract string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "ingest", "--title", title, "--abstract", abstract)
}

// Serve starts the admin trigger server.
func (Engine) Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "serve")
}

// Export writes the store to data/export.yaml.
func (Engine) Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "export", "--output", "data/export.yaml")
}
