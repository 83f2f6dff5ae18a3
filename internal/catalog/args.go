package catalog

// Typed accessors over validated argument maps. Dispatch has already
// checked presence and wire types; these only coerce.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func intArg(args map[string]any, key string) int {
	v, _ := intArgOK(args, key)
	return v
}

func intArgOK(args map[string]any, key string) (int, bool) {
	switch n := args[key].(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
