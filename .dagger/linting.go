package main

import (
	"context"
	"fmt"

	"dagger/gita/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts layers golangci-lint on top of goContainer() so the Go caches are
// already in place. golangci-lint's default linters apply.
func (g *Gita) lintOpts() dagger.GolangcilintOpts {
	base := g.goContainer().
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
	}
}

// CheckLint runs golangci-lint against the gita source code without applying fixes.
func (g *Gita) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(g.Source, g.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint with --fix and returns the modified source directory.
func (g *Gita) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(g.Source, g.lintOpts()).Lint()
}
