package vm

// NamespaceKind distinguishes the namespace categories a name can live in.
type NamespaceKind uint8

const (
	NamespacePublic NamespaceKind = iota
	NamespacePackage
	NamespacePackageInternal
	NamespaceProtected
	NamespaceExplicit
	NamespaceStaticProtected
	NamespacePrivate
)

var namespaceKindNames = [...]string{
	NamespacePublic:          "public",
	NamespacePackage:         "package",
	NamespacePackageInternal: "internal",
	NamespaceProtected:       "protected",
	NamespaceExplicit:        "explicit",
	NamespaceStaticProtected: "static protected",
	NamespacePrivate:         "private",
}

func (k NamespaceKind) String() string {
	if int(k) < len(namespaceKindNames) {
		return namespaceKindNames[k]
	}
	return "?"
}

// Namespace is a resolved namespace. Resolution happens outside this
// package; here it is only part of a property key.
type Namespace struct {
	Kind NamespaceKind
	URI  string
}

// PublicNamespace returns the public namespace with the given URI.
func PublicNamespace(uri string) Namespace {
	return Namespace{Kind: NamespacePublic, URI: uri}
}

// QName is a namespace-qualified property name.
//
// QName is a comparable value type and is used directly as a map key, so
// copies are independent and equality is structural.
type QName struct {
	NS    Namespace
	Local string
}

// NewQName builds a name in the given namespace.
func NewQName(ns Namespace, local string) QName {
	return QName{NS: ns, Local: local}
}

// PublicName builds a name in the unnamed public namespace.
func PublicName(local string) QName {
	return QName{NS: PublicNamespace(""), Local: local}
}

func (q QName) String() string {
	if q.NS.URI == "" {
		if q.NS.Kind == NamespacePublic {
			return q.Local
		}
		return q.NS.Kind.String() + "::" + q.Local
	}
	return q.NS.URI + "::" + q.Local
}
