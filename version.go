package lattice

// Version is the current lattice release.
const Version = "0.4.0"
