package heap

// Mapped is a Provider over an anonymous private memory mapping. The whole
// limit is reserved when the provider is created; the kernel commits pages as
// they are first touched.
type Mapped struct {
	region
}
