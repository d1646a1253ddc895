package processor

// Registry binds one Processor instance to each FileType name. Many
// FileTypes may share the same Processor instance (e.g. every "#"-comment
// language shares one LineCommentProcessor): each FileType name is bound
// to exactly one Processor, and multiple names may share one processor
// instance.
type Registry struct {
	byTypeName map[string]Processor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byTypeName: make(map[string]Processor)}
}

// Bind associates typeName (a filetype.FileType.Name) with a Processor.
func (r *Registry) Bind(typeName string, p Processor) {
	r.byTypeName[typeName] = p
}

// Lookup returns the Processor bound to typeName, or (nil, false) if none
// is registered — the TYPE_RESOLVED_NO_PROCESSOR_REGISTERED case.
func (r *Registry) Lookup(typeName string) (Processor, bool) {
	p, ok := r.byTypeName[typeName]
	return p, ok
}
