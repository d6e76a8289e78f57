package schemagen

// Filter post-processes a finalized schema body. It runs once per repository
// definition and once per top-level inline result. Returning nil keeps the
// body it was given.
type Filter func(body *Body, contract DataContract, repo *Repository) (*Body, error)

// ExtensionsFilter adds fixed vendor fields to every body produced for the
// identities in targets, or to every body when targets is empty.
func ExtensionsFilter(extensions map[string]any, targets ...Identity) Filter {
	wanted := make(map[Identity]struct{}, len(targets))
	for _, target := range targets {
		wanted[target] = struct{}{}
	}
	return func(body *Body, contract DataContract, _ *Repository) (*Body, error) {
		if len(wanted) > 0 {
			if _, ok := wanted[contract.Identity()]; !ok {
				return body, nil
			}
		}
		for key, value := range extensions {
			body.SetExtension(key, value)
		}
		return body, nil
	}
}

// DescriptionFilter sets the description of objects that have none, using
// describe to produce it.
func DescriptionFilter(describe func(DataContract) string) Filter {
	return func(body *Body, contract DataContract, _ *Repository) (*Body, error) {
		if body.Description != "" || describe == nil {
			return body, nil
		}
		body.Description = describe(contract)
		return body, nil
	}
}

func (g *Generator) runFilters(target string, body *Body, contract DataContract, repo *Repository) (*Body, error) {
	current := body
	for i, filter := range g.cfg.filters {
		next, err := filter(current, contract, repo)
		if err != nil {
			return nil, wrapFilterError(target, i, err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}
