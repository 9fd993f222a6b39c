// Gita CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/gita/internal/dagger"
)

// Gita is the main module for the Gita CI/CD pipeline
type Gita struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Gita CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", "build", "tmp", ".gita"]
	source *dagger.Directory,
) *Gita {
	return &Gita{
		Source: source,
	}
}

// goContainer returns an Alpine Go container with the project source mounted.
// gita is pure Go, so CGO stays off.
func (g *Gita) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", g.Source)
}

// Test runs the gita unit tests via "go test". Provider keys are cleared so
// no test reaches a real provider.
func (g *Gita) Test(ctx context.Context) (string, error) {
	return g.goContainer().
		WithoutEnvVariable("GEMINI_API_KEY").
		WithoutEnvVariable("LOVABLE_API_KEY").
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
