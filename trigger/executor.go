package trigger

import (
	"context"
	"fmt"
	"log"
)

// Discover enumerates all registered triggers. A broken factory is logged
// and skipped; it never aborts discovery of the others.
func Discover() []Info {
	infos := make([]Info, 0, len(Registry))
	for _, script := range Scripts() {
		t, err := Create(script)
		if err != nil {
			log.Printf("Skipping trigger %s during discovery: %v", script, err)
			continue
		}
		infos = append(infos, Info{
			Name:          t.Name(),
			Script:        script,
			Description:   t.Description(),
			DefaultParams: t.DefaultParams(),
		})
	}
	return infos
}

// Run executes the trigger registered under script with the given
// parameters merged over the implementation's defaults. It returns a nil
// Output (and logs) when the script is unknown or the check fails; a sweep
// caller treats nil as "skip this rule this cycle".
func Run(ctx context.Context, script string, params Params) *Output {
	out, err := run(ctx, script, params)
	if err != nil {
		log.Printf("Error executing trigger %s: %v", script, err)
		return nil
	}
	return out
}

func run(ctx context.Context, script string, params Params) (out *Output, err error) {
	t, err := Create(script)
	if err != nil {
		return nil, fmt.Errorf("failed to load trigger %s: %w", script, err)
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrCheckPanicked, r)
		}
	}()

	out, err = t.Check(ctx, merged(t.DefaultParams(), params))
	if err != nil {
		return nil, fmt.Errorf("trigger %s check failed: %w", script, err)
	}
	return out, nil
}
