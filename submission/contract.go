package submission

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/enviromesh/sensornet-contract/common"
	"github.com/enviromesh/sensornet-contract/governance/govconst"
)

type (
	// Sensor mirrors the record returned by the Sensor contract.
	Sensor struct {
		Owner       interop.Hash160
		MetaRef     []byte
		Reputation  int
		Active      bool
		Submissions int
	}

	// Submission is an accepted data batch reference. The record is
	// immutable after validation and is never deleted, which is what
	// makes the storage reference replay guard unbounded.
	Submission struct {
		SensorID    []byte
		KeyRef      []byte
		ContentHash []byte
		Submitter   interop.Hash160
		SubmittedAt int
		State       int
		ValidatedAt int
		Details     []byte
	}
)

// Validation states of a submission.
const (
	StatePending = iota + 1
	StateValid
	StateInvalid
)

const (
	// NotFoundError is returned by methods resolving a storage reference
	// when there is no submission for it.
	NotFoundError = "submission not found"
	// RefUsedError is returned by Submit for a storage reference that was
	// ever accepted before, from any sensor.
	RefUsedError = "storage reference already used"
	// HashUsedError is returned by Submit for a content hash that was
	// ever accepted before, from any sensor.
	HashUsedError = "content hash already used"
	// AlreadyValidatedError is returned by Validate for a submission that
	// left the Pending state.
	AlreadyValidatedError = "submission already validated"
	// TimeoutError is returned by Validate after the validation window of
	// the submission has passed.
	TimeoutError = "validation timeout exceeded"
	// InactiveError is returned by Submit for a disabled sensor.
	InactiveError = "sensor is inactive"

	sensorContractKey     = "sensorScriptHash"
	governanceContractKey = "governanceScriptHash"
	oracleKey             = "oracle"

	submissionKeyPrefix = 'x'
	hashKeyPrefix       = 'h'
	lastTimeKeyPrefix   = 't'

	validReputationDelta   = 1
	invalidReputationDelta = -5
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		addrSensor     interop.Hash160
		addrGovernance interop.Hash160
		oracle         interop.Hash160
	})

	if len(args.addrSensor) != interop.Hash160Len ||
		len(args.addrGovernance) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}
	if len(args.oracle) != interop.Hash160Len {
		panic("incorrect length of oracle script hash")
	}

	storage.Put(ctx, sensorContractKey, args.addrSensor)
	storage.Put(ctx, governanceContractKey, args.addrGovernance)
	storage.Put(ctx, oracleKey, args.oracle)

	runtime.Log("submission contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// by committee only.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("submission contract updated")
}

// Submit accepts a data batch reference from an active sensor. The storage
// reference and the content hash must never have been accepted before, from
// any sensor; the gap since the previous submission of the sensor must fit
// the configured interval window, except for the very first submission of a
// sensor. On success, a Pending submission is appended and the sensor
// counter grows. Can be invoked only by the sensor owner.
func Submit(sensorID []byte, storageRef []byte, keyRef []byte, contentHash []byte) {
	ctx := storage.GetContext()

	if len(storageRef) == 0 {
		panic("empty storage reference")
	}
	if len(contentHash) == 0 {
		panic("empty content hash")
	}

	s := getSensorRecord(ctx, sensorID)
	if !s.Active {
		panic(InactiveError)
	}

	common.CheckOwnerWitness(s.Owner)

	subKey := submissionKey(storageRef)
	if storage.Get(ctx, subKey) != nil {
		panic(RefUsedError)
	}
	hKey := hashKey(contentHash)
	if storage.Get(ctx, hKey) != nil {
		panic(HashUsedError)
	}

	now := runtime.GetTime()
	tKey := lastTimeKey(sensorID)
	last := storage.Get(ctx, tKey)
	if last != nil {
		gap := now - last.(int)
		if gap < configInt(ctx, govconst.MinSubmissionIntervalKey) {
			panic("submission interval has not elapsed")
		}
		if gap > configInt(ctx, govconst.MaxSubmissionIntervalKey) {
			panic("submission interval exceeded")
		}
	}

	sub := Submission{
		SensorID:    sensorID,
		KeyRef:      keyRef,
		ContentHash: contentHash,
		Submitter:   s.Owner,
		SubmittedAt: now,
		State:       StatePending,
	}

	common.SetSerialized(ctx, subKey, sub)
	storage.Put(ctx, hKey, storageRef)
	storage.Put(ctx, tKey, now)

	sensorContractAddr := storage.Get(ctx, sensorContractKey).(interop.Hash160)
	contract.Call(sensorContractAddr, "addSubmission", contract.All, sensorID)

	runtime.Log("data submission has been accepted")
	runtime.Notify("SubmissionAdded", sensorID, storageRef)
}

// Validate records the oracle verdict for a Pending submission and adjusts
// the sensor reputation accordingly: +1 for a valid batch, -5 for an invalid
// one, both clamped by the registry. A submission is validated at most once
// and only within the configured timeout after its acceptance. Can be
// invoked only by the validation oracle.
func Validate(sensorID []byte, storageRef []byte, valid bool, details []byte) {
	ctx := storage.GetContext()

	checkOracleWitness(ctx)

	sub := getSubmission(ctx, storageRef)
	if !common.BytesEqual(sub.SensorID, sensorID) {
		panic("submission belongs to another sensor")
	}
	if sub.State != StatePending {
		panic(AlreadyValidatedError)
	}

	now := runtime.GetTime()
	if now > sub.SubmittedAt+configInt(ctx, govconst.ValidationTimeoutKey) {
		panic(TimeoutError)
	}

	applyValidation(ctx, sub, storageRef, valid, details, now)
}

// ValidateBatch applies the Validate rules to every item of the batch,
// skipping items failing any precondition instead of aborting their
// siblings, and returns the number of items confirmed as valid. The arrays
// must be of the same length.
func ValidateBatch(sensorIDs [][]byte, storageRefs [][]byte, valids []bool, details []byte) int {
	ctx := storage.GetContext()

	checkOracleWitness(ctx)

	if len(sensorIDs) != len(storageRefs) || len(sensorIDs) != len(valids) {
		panic("batch array length mismatch")
	}

	now := runtime.GetTime()
	timeout := configInt(ctx, govconst.ValidationTimeoutKey)

	confirmed := 0
	for i := range storageRefs {
		data := storage.Get(ctx, submissionKey(storageRefs[i]))
		if data == nil {
			continue
		}

		sub := std.Deserialize(data.([]byte)).(Submission)
		if !common.BytesEqual(sub.SensorID, sensorIDs[i]) {
			continue
		}
		if sub.State != StatePending {
			continue
		}
		if now > sub.SubmittedAt+timeout {
			continue
		}

		applyValidation(ctx, sub, storageRefs[i], valids[i], details, now)
		if valids[i] {
			confirmed++
		}
	}

	return confirmed
}

// Get returns the submission accepted with the specified storage reference.
//
// If there is no such submission, it panics with NotFoundError.
func Get(storageRef []byte) Submission {
	ctx := storage.GetReadOnlyContext()
	return getSubmission(ctx, storageRef)
}

// LastSubmissionTime returns the block time (ms) of the last accepted
// submission of the sensor, zero if it never submitted.
func LastSubmissionTime(sensorID []byte) int {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, lastTimeKey(sensorID))
	if data == nil {
		return 0
	}

	return data.(int)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func applyValidation(ctx storage.Context, sub Submission, storageRef []byte, valid bool, details []byte, now int) {
	delta := invalidReputationDelta
	reason := []byte("invalid submission")
	state := StateInvalid
	if valid {
		delta = validReputationDelta
		reason = []byte("valid submission")
		state = StateValid
	}

	sub.State = state
	sub.ValidatedAt = now
	sub.Details = details
	common.SetSerialized(ctx, submissionKey(storageRef), sub)

	sensorContractAddr := storage.Get(ctx, sensorContractKey).(interop.Hash160)
	contract.Call(sensorContractAddr, "adjustReputation", contract.All,
		sub.SensorID, delta, reason)

	runtime.Notify("SubmissionValidated", sub.SensorID, storageRef, valid)
}

func checkOracleWitness(ctx storage.Context) {
	oracle := storage.Get(ctx, oracleKey).(interop.Hash160)
	common.CheckOracleWitness(oracle)
}

func getSensorRecord(ctx storage.Context, sensorID []byte) Sensor {
	sensorContractAddr := storage.Get(ctx, sensorContractKey).(interop.Hash160)
	return contract.Call(sensorContractAddr, "get", contract.ReadOnly, sensorID).(Sensor)
}

func configInt(ctx storage.Context, key string) int {
	governanceContractAddr := storage.Get(ctx, governanceContractKey).(interop.Hash160)
	return contract.Call(governanceContractAddr, "config", contract.ReadOnly, key).(int)
}

func getSubmission(ctx storage.Context, storageRef []byte) Submission {
	data := storage.Get(ctx, submissionKey(storageRef))
	if data == nil {
		panic(NotFoundError)
	}

	return std.Deserialize(data.([]byte)).(Submission)
}

func submissionKey(storageRef []byte) []byte {
	return append([]byte{submissionKeyPrefix}, storageRef...)
}

func hashKey(contentHash []byte) []byte {
	return append([]byte{hashKeyPrefix}, contentHash...)
}

func lastTimeKey(sensorID []byte) []byte {
	return append([]byte{lastTimeKeyPrefix}, sensorID...)
}
