package hook

// Chain composes hooks so that the first one is the outermost.
// Nil hooks are skipped. Returns nil if there is nothing to chain.
func Chain[T any](hooks ...func(next T) T) func(next T) T {
	var valid []func(next T) T
	for _, h := range hooks {
		if h != nil {
			valid = append(valid, h)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return func(next T) T {
		for i := len(valid) - 1; i >= 0; i-- {
			next = valid[i](next)
		}
		return next
	}
}
