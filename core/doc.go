// Package core contains the guest bootstrap domain: the transport catalog,
// the prober and selector, and the orchestrator that hands the selected
// transport to the external core. Native provider implementations live in the
// transport package; core must not depend on them.
package core
