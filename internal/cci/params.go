package cci

// ResolvedParams is the final name→value set a task will run with:
// everything the caller supplied plus defaults for unsupplied
// defaulted parameters.
type ResolvedParams map[string]string

// Resolve reconciles supplied parameters against a task's declared
// contract. It is a pure function: no state survives between attempts,
// and the outcome is re-derived from the full supplied set every time.
//
// A parameter is missing when it is required, unsupplied, and declares
// no default. Missing parameters keep descriptor order — that is the
// tie-break policy for prompt construction. Supplied names the
// descriptor doesn't declare pass through untouched, since cci accepts
// undeclared options for some task classes.
func Resolve(desc *TaskDescriptor, supplied map[string]string) (ResolvedParams, *MissingParameterPrompt) {
	var missing []ParameterSpec
	for _, spec := range desc.Parameters {
		if _, ok := supplied[spec.Name]; ok {
			continue
		}
		if spec.Required && spec.Default == "" {
			missing = append(missing, spec)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingParameterPrompt{TaskName: desc.Name, Missing: missing}
	}

	resolved := make(ResolvedParams, len(supplied))
	for name, value := range supplied {
		resolved[name] = value
	}
	for _, spec := range desc.Parameters {
		if _, ok := resolved[spec.Name]; !ok && spec.Default != "" {
			resolved[spec.Name] = spec.Default
		}
	}
	return resolved, nil
}
