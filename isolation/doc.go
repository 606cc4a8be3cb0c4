// Package isolation declares which third-party packages a guest module must
// relocate into its own namespace and which it must leave out of the bundled
// artifact because the host already ships them.
//
// The policy is data. It is consumed by an external packaging step through
// the manifest written by Policy.WriteManifest, and checked at bootstrap so a
// native transport never loses the binding to the library it wraps.
//
// Package names are dot separated. A relocation source covers the package and
// every sub-package. Exclusion package patterns are either an exact package
// ("io.netty.channel") or a subtree ("io.netty.handler.**").
package isolation
