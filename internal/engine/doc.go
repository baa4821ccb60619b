// Package engine defines the contract between the job orchestration and the
// workflow engine that stores provenance and runs calculations.
//
// The orchestration depends only on the Engine interface: registry lookups
// for computers and codes, code registration, and a blocking run that returns
// the calculation node. The local implementation lives in package
// localengine; tests substitute a fake.
package engine
