package g3d

// ABIVersion is the version of the device API, encoded as
// major*10000 + minor*100 + patch. It changes whenever an operation is
// added, removed or reordered, or the trace format changes.
const ABIVersion = 10000

// LinkedVersion returns the ABIVersion this package was built with. Hosts
// that load g3d dynamically compare it against the version they expect.
func LinkedVersion() uint32 { return ABIVersion }
