// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"fmt"

	"github.com/sessionforge/starkdeploy/pkg/models"
)

// PlanOrder computes the full deployment order: a topological sort of
// the registry's dependency graph, deterministic because ready nodes
// are always taken in registry declaration order. Unknown dependency
// types and cycles surface as ConfigurationError before any chain
// call.
func PlanOrder(registry models.SpecRegistry) ([]models.ContractType, error) {
	types := registry.Types()

	edges := map[models.ContractType][]models.ContractType{}
	for _, contractType := range types {
		spec := registry[contractType]
		for _, dep := range spec.Dependencies {
			if dep.Type == "" {
				// satisfied from configuration or flags, not part of the plan
				continue
			}
			if _, ok := registry[dep.Type]; !ok {
				return nil, &ConfigurationError{
					Reason: fmt.Sprintf(
						"%s depends on unknown contract type %q", contractType, dep.Type,
					),
				}
			}
			edges[contractType] = append(edges[contractType], dep.Type)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	marks := map[models.ContractType]int{}
	var order []models.ContractType

	var visit func(t models.ContractType) error
	visit = func(t models.ContractType) error {
		switch marks[t] {
		case done:
			return nil
		case visiting:
			return &ConfigurationError{
				Reason: fmt.Sprintf("dependency cycle through %s", t),
			}
		}
		marks[t] = visiting
		for _, dep := range edges[t] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		marks[t] = done
		order = append(order, t)
		return nil
	}

	for _, contractType := range types {
		if err := visit(contractType); err != nil {
			return nil, err
		}
	}
	return order, nil
}
