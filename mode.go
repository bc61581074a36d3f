package slimasync

// lifecycleTypes holds the resolved identifiers of one async action.
type lifecycleTypes struct {
	pending string
	success string
	error   string
}

// mode selects how lifecycle types are resolved. It is decided once per
// action and is either explicitTypes or conventionPrefix.
type mode interface {
	resolve() lifecycleTypes
}

type explicitTypes [3]string

func (t explicitTypes) resolve() lifecycleTypes {
	return lifecycleTypes{pending: t[0], success: t[1], error: t[2]}
}

type conventionPrefix struct {
	prefix string
	cfg    *Config
}

func (p conventionPrefix) resolve() lifecycleTypes {
	return lifecycleTypes{
		pending: p.prefix + p.cfg.PendingSuffix,
		success: p.prefix + p.cfg.SuccessSuffix,
		error:   p.prefix + p.cfg.ErrorSuffix,
	}
}

// eligible reports whether f describes an API call for an instance with the
// given configuration. A nil cfg means explicit mode. Only a malformed
// configuration produces an error here.
func eligible(f fields, cfg *Config) (bool, error) {
	if cfg == nil {
		return f.types != nil, nil
	}
	if !present(f.typePrefix) {
		return false, nil
	}
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	return true, nil
}

// resolveMode builds the mode for an eligible action and applies the type
// identifier rules.
func resolveMode(f fields, cfg *Config) (mode, error) {
	if cfg == nil {
		types, ok := typeList(f.types)
		if !ok {
			return nil, newValidationError(KeyTypes, ErrTypes)
		}
		return types, nil
	}
	prefix, ok := f.typePrefix.(string)
	if !ok {
		return nil, newValidationError(KeyTypePrefix, ErrTypePrefix)
	}
	return conventionPrefix{prefix: prefix, cfg: cfg}, nil
}

func typeList(v any) (explicitTypes, bool) {
	var out explicitTypes
	switch l := v.(type) {
	case []string:
		if len(l) != len(out) {
			return out, false
		}
		copy(out[:], l)
		return out, true
	case []any:
		if len(l) != len(out) {
			return out, false
		}
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return out, false
			}
			out[i] = s
		}
		return out, true
	case [3]string:
		return l, true
	default:
		return out, false
	}
}
