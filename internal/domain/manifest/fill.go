package manifest

// VersionKey is the field the filler looks for at every nesting level.
const VersionKey = "version"

// FillVersions returns a copy of node in which every "version" field that is
// null or an empty string holds value. Maps and lists are copied, leaves are
// returned unchanged, and the input is never modified.
func FillVersions(node any, value string) any {
	switch n := node.(type) {
	case Document:
		return Document(fillMap(n, value))
	case map[string]any:
		return fillMap(n, value)
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = FillVersions(item, value)
		}

		return out
	default:
		return node
	}
}

// FillDocumentVersions is FillVersions for a whole profile document.
func FillDocumentVersions(doc Document, value string) Document {
	if doc == nil {
		return nil
	}

	return fillMap(doc, value)
}

func fillMap(m map[string]any, value string) map[string]any {
	out := make(map[string]any, len(m))

	for k, v := range m {
		if k == VersionKey && isUnset(v) {
			out[k] = value

			continue
		}

		out[k] = FillVersions(v, value)
	}

	return out
}

func isUnset(v any) bool {
	if v == nil {
		return true
	}

	s, ok := v.(string)

	return ok && s == ""
}
