package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/sysdyn/internal/sysdyn"
)

// builders maps registry names to spec constructors. Each call builds a
// fresh spec, so callers can mutate initial values freely.
var builders = map[string]func() *sysdyn.ModelSpec{
	"population": Population,
	"energy":     Energy,
	"grants":     Grants,
}

// Get builds the model spec registered under name.
func Get(name string) (*sysdyn.ModelSpec, error) {
	fn, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

// List returns the registered model names, sorted.
func List() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
