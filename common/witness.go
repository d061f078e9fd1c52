package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

var (
	// ErrCommitteeWitnessFailed appears when the method must be
	// called by the chain committee but was not.
	ErrCommitteeWitnessFailed = "committee witness check failed"
	// ErrOwnerWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrOwnerWitnessFailed = "owner witness check failed"
	// ErrOracleWitnessFailed appears when the method must be called
	// by the designated validation oracle but was not.
	ErrOracleWitnessFailed = "oracle witness check failed"
	// ErrWitnessFailed appears when the method must be called
	// using certain public key but was not.
	ErrWitnessFailed = "witness check failed"
)

// CheckCommitteeWitness checks witness of the chain committee.
// It panics with ErrCommitteeWitnessFailed message on fail.
func CheckCommitteeWitness() {
	checkWitnessWithPanic(CommitteeAddress(), ErrCommitteeWitnessFailed)
}

// CheckOwnerWitness checks witness of the passed caller.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrOwnerWitnessFailed)
}

// CheckOracleWitness checks witness of the passed oracle account.
// It panics with ErrOracleWitnessFailed message on fail.
func CheckOracleWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrOracleWitnessFailed)
}

// CheckWitness checks witness of the passed caller.
// It panics with ErrWitnessFailed message on fail.
func CheckWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrWitnessFailed)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
