// internal/memory/opener.go
package memory

// ProcessOpener returns an Opener that looks the target up by executable name
// on every call. The poller calls it again after the target goes away.
func ProcessOpener(name string) Opener {
	return func() (Accessor, error) {
		p, err := OpenProcess(name)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// StaticOpener always hands out the same accessor.
func StaticOpener(acc Accessor) Opener {
	return func() (Accessor, error) {
		if acc == nil {
			return nil, ErrProcessNotOpen
		}
		return acc, nil
	}
}
