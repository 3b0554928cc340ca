package domain

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/roach88/recq/internal/schema"
)

//go:embed schema.cue
var schemaCUE string

// Collection names declared in schema.cue.
const (
	CollectionProjects  = "projects"
	CollectionTasks     = "tasks"
	CollectionPeople    = "people"
	CollectionResources = "resources"
)

var (
	schemasOnce sync.Once
	schemas     []*schema.Schema
	schemasErr  error
)

// Schemas compiles the workspace collections once and returns them in
// declaration order.
func Schemas() ([]*schema.Schema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = schema.CompileSource(schemaCUE)
	})
	return schemas, schemasErr
}

// Schema returns the compiled schema of one workspace collection.
func Schema(name string) (*schema.Schema, error) {
	all, err := Schemas()
	if err != nil {
		return nil, err
	}
	s, ok := schema.Find(all, name)
	if !ok {
		return nil, fmt.Errorf("domain: unknown collection %q", name)
	}
	return s, nil
}

// Source returns the CUE source declaring every workspace collection.
func Source() string {
	return schemaCUE
}
