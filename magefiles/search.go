//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs one aggregation for query, writing the
// outputs to results/.
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "search", "--out-dir", "results", query)
}

// Plan prints the request plans for query without fetching.
func Plan(query string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "plan", "--with-doaj", query)
}
