// Package domain contains the core entities of the lattice editor: nodes,
// connections, workflows and panel state. It has no dependencies on storage,
// transport or rendering; every other package derives from these types.
package domain
