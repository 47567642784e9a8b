package history

import (
	"fmt"
	"strings"
)

// ExtensionRules maps mainline modules to the extension SDKs their elements
// are versioned against. The table is externally supplied domain data, not
// code; see pkg/config for the TOML form.
type ExtensionRules struct {
	modules map[string][]int
}

// NewExtensionRules builds a rule table from module name to extension SDK
// identifiers. SDK id 0 is reserved for the primary release train and may
// not appear in the table.
func NewExtensionRules(modules map[string][]int) (*ExtensionRules, error) {
	copied := make(map[string][]int, len(modules))
	for module, ids := range modules {
		for _, id := range ids {
			if id <= 0 {
				return nil, fmt.Errorf("extension rules: module %q lists reserved sdk id %d", module, id)
			}
		}
		copied[module] = append([]int(nil), ids...)
	}
	return &ExtensionRules{modules: copied}, nil
}

// sdks renders the combined-axes attribute for one element: "id:extVersion"
// per SDK the module participates in, then "0:since" for the primary axis.
// Empty when nothing beyond the primary axis applies.
func (r *ExtensionRules) sdks(module string, e *Element) string {
	if e.SinceExtension == 0 {
		return ""
	}
	ids := r.modules[module]
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d:%d", id, e.SinceExtension))
	}
	parts = append(parts, fmt.Sprintf("0:%s", e.Since))
	return strings.Join(parts, ",")
}

// computeSDKs is the late overlay pass: for every class carrying a mainline
// module, cache the combined attribute on the class and each of its
// elements. Serialization reads the cache per attribute.
func (h *History) computeSDKs(rules *ExtensionRules) {
	for _, c := range h.classes {
		module := c.MainlineModule
		if module == "" {
			continue
		}
		c.eachElement(func(e *Element) {
			e.sdks = rules.sdks(module, e)
		})
	}
}
