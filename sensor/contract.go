package sensor

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/enviromesh/sensornet-contract/common"
)

type (
	// Sensor is a record of a registered device. Reputation stays within
	// [0, MaxReputation] for the whole lifetime of the record, Submissions
	// only grows.
	Sensor struct {
		Owner       interop.Hash160
		MetaRef     []byte
		Reputation  int
		Active      bool
		Submissions int
	}
)

const (
	// MaxReputation is the upper bound of a sensor reputation score. A
	// fresh sensor starts at the cap, validation penalties move it down.
	MaxReputation = 100

	// NotFoundError is returned by methods resolving a sensor ID when
	// there is no such record.
	NotFoundError = "sensor not found"
	// AlreadyExistsError is returned by Register for a duplicate ID.
	AlreadyExistsError = "sensor already registered"
	// RestrictedError is returned by mutators reserved for the
	// submission contract.
	RestrictedError = "method must be invoked by submission contract"

	submissionContractKey = "submissionScriptHash"

	sensorKeyPrefix = 'x'
	ownerKeyPrefix  = 'o'
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
		addrSubmission interop.Hash160
	})

	if len(args.addrSubmission) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	storage.Put(ctx, submissionContractKey, args.addrSubmission)

	runtime.Log("sensor contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// by committee only.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("sensor contract updated")
}

// Register creates a record for a new sensor owned by the specified account.
// The ID is chosen by the owner and must be globally unique; metaRef is an
// opaque reference to device metadata in content-addressed storage. Can be
// invoked only by the owner.
func Register(id []byte, owner interop.Hash160, metaRef []byte) {
	ctx := storage.GetContext()

	if len(id) == 0 {
		panic("empty sensor ID")
	}
	if len(owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}

	common.CheckOwnerWitness(owner)

	key := sensorKey(id)
	if storage.Get(ctx, key) != nil {
		panic(AlreadyExistsError)
	}

	s := Sensor{
		Owner:       owner,
		MetaRef:     metaRef,
		Reputation:  MaxReputation,
		Active:      true,
		Submissions: 0,
	}

	common.SetSerialized(ctx, key, s)
	storage.Put(ctx, ownerIndexKey(owner, id), id)

	runtime.Log("sensor has been registered")
	runtime.Notify("SensorRegistered", id, owner)
}

// Get returns the sensor record.
//
// If the sensor doesn't exist, it panics with NotFoundError.
func Get(id []byte) Sensor {
	ctx := storage.GetReadOnlyContext()
	return getSensor(ctx, id)
}

// OwnerOf returns the current owner of the sensor.
//
// If the sensor doesn't exist, it panics with NotFoundError.
func OwnerOf(id []byte) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getSensor(ctx, id).Owner
}

// SetActive enables or disables data submissions for the sensor. Can be
// invoked by the sensor owner or by committee.
func SetActive(id []byte, active bool) {
	ctx := storage.GetContext()
	s := getSensor(ctx, id)

	if !runtime.CheckWitness(s.Owner) {
		common.CheckCommitteeWitness()
	}

	if s.Active == active {
		return
	}

	s.Active = active
	common.SetSerialized(ctx, sensorKey(id), s)

	runtime.Log("sensor active flag has been updated")
	runtime.Notify("ActiveUpdated", id, active)
}

// TransferOwnership moves the sensor between owner accounts. The record is
// removed from the old owner index and added to the new one in the same
// transaction. Can be invoked only by the current owner.
func TransferOwnership(id []byte, newOwner interop.Hash160) {
	ctx := storage.GetContext()
	s := getSensor(ctx, id)

	if len(newOwner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}

	common.CheckOwnerWitness(s.Owner)

	oldOwner := s.Owner
	s.Owner = newOwner

	storage.Delete(ctx, ownerIndexKey(oldOwner, id))
	storage.Put(ctx, ownerIndexKey(newOwner, id), id)
	common.SetSerialized(ctx, sensorKey(id), s)

	runtime.Log("sensor ownership has been transferred")
	runtime.Notify("OwnershipTransferred", id, oldOwner, newOwner)
}

// AdjustReputation shifts the sensor reputation by delta clamping the result
// to [0, MaxReputation]. Reason is an opaque tag recorded in the notification.
// Can be invoked only by the submission contract.
func AdjustReputation(id []byte, delta int, reason []byte) {
	ctx := storage.GetContext()
	checkSubmissionContract(ctx)

	s := getSensor(ctx, id)

	value := s.Reputation + delta
	if value < 0 {
		value = 0
	}
	if value > MaxReputation {
		value = MaxReputation
	}

	if value == s.Reputation {
		return
	}

	s.Reputation = value
	common.SetSerialized(ctx, sensorKey(id), s)

	runtime.Notify("ReputationUpdated", id, value, reason)
}

// AddSubmission increments the sensor submission counter. Can be invoked
// only by the submission contract.
func AddSubmission(id []byte) {
	ctx := storage.GetContext()
	checkSubmissionContract(ctx)

	s := getSensor(ctx, id)
	s.Submissions = s.Submissions + 1
	common.SetSerialized(ctx, sensorKey(id), s)
}

// ListByOwner returns IDs of all sensors owned by the specified account.
func ListByOwner(owner interop.Hash160) [][]byte {
	ctx := storage.GetReadOnlyContext()

	var list [][]byte

	it := storage.Find(ctx, append([]byte{ownerKeyPrefix}, owner...), storage.ValuesOnly)
	for iterator.Next(it) {
		id := iterator.Value(it).([]byte)
		list = append(list, id)
	}

	return list
}

// Count returns the number of registered sensors.
func Count() int {
	count := 0
	ctx := storage.GetReadOnlyContext()
	it := storage.Find(ctx, []byte{sensorKeyPrefix}, storage.KeysOnly)
	for iterator.Next(it) {
		count++
	}
	return count
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func checkSubmissionContract(ctx storage.Context) {
	submissionHash := storage.Get(ctx, submissionContractKey).(interop.Hash160)
	if !runtime.GetCallingScriptHash().Equals(submissionHash) {
		panic(RestrictedError)
	}
}

func getSensor(ctx storage.Context, id []byte) Sensor {
	data := storage.Get(ctx, sensorKey(id))
	if data == nil {
		panic(NotFoundError)
	}

	return std.Deserialize(data.([]byte)).(Sensor)
}

func sensorKey(id []byte) []byte {
	return append([]byte{sensorKeyPrefix}, id...)
}

func ownerIndexKey(owner interop.Hash160, id []byte) []byte {
	key := append([]byte{ownerKeyPrefix}, owner...)
	return append(key, id...)
}
