package reward

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
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

	// RewardClaim is a computed reward entitlement of a sensor for a single
	// period. Amount is a deterministic function of the recorded
	// breakdown fields; the record is mutated only by the claim
	// operation.
	RewardClaim struct {
		SensorID          []byte
		Period            int
		Amount            int
		Base              int
		QualityMultiplier int
		FrequencyBonus    int
		ReputationBonus   int
		ClaimableAfter    int
		Claimed           bool
	}
)

const (
	// NotFoundError is returned by methods resolving a (sensor, period)
	// pair when no reward was calculated for it.
	NotFoundError = "reward claim not found"
	// AlreadyClaimedError is returned by Claim for an already paid out
	// entitlement.
	AlreadyClaimedError = "reward already claimed"
	// LockupError is returned by Claim before the lockup of the
	// entitlement has elapsed.
	LockupError = "lockup period has not elapsed"
	// LowReputationError is returned by CalculateReward for a sensor
	// below the reputation threshold.
	LowReputationError = "reputation below reward threshold"
	// StalePeriodError is returned by CalculateReward for a period not
	// greater than the last rewarded one.
	StalePeriodError = "period already rewarded"
	// InactiveError is returned by CalculateReward for a disabled sensor.
	InactiveError = "sensor is inactive"

	sensorContractKey     = "sensorScriptHash"
	governanceContractKey = "governanceScriptHash"
	oracleKey             = "oracle"

	claimKeyPrefix      = 'c'
	lastPeriodKeyPrefix = 'p'

	// reputationBonusFloor is the reputation score from which the
	// reputation bonus starts to accrue.
	reputationBonusFloor = 80
)

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// The reward pool is funded through it.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("reward contract accepts GAS only")
	}
}

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

	runtime.Log("reward contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// by committee only.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("reward contract updated")
}

// CalculateReward computes the reward entitlement of the sensor for the
// period from the validated submission count and the oracle quality score
// (0-1000). The amount is a pure function of the inputs, the sensor
// reputation and the current network parameters; all multipliers use x1000
// integer scaling. Periods of a sensor are rewarded in strictly increasing
// order, one claim per period, claimable after the configured lockup. Can
// be invoked only by the validation oracle. Returns the total amount.
func CalculateReward(sensorID []byte, period int, validCount int, qualityScore int) int {
	ctx := storage.GetContext()

	checkOracleWitness(ctx)

	if validCount < 0 {
		panic("negative submission count")
	}
	if qualityScore < 0 || qualityScore > 1000 {
		panic("quality score is out of range")
	}

	s := getSensorRecord(ctx, sensorID)
	if !s.Active {
		panic(InactiveError)
	}
	if s.Reputation < configInt(ctx, govconst.MinReputationForRewardKey) {
		panic(LowReputationError)
	}

	pKey := lastPeriodKey(sensorID)
	last := storage.Get(ctx, pKey)
	if last != nil && period <= last.(int) {
		panic(StalePeriodError)
	}

	base := configInt(ctx, govconst.RewardBaseKey)

	qualityMultiplier := 1000 + qualityScore*500/1000

	frequencyBonus := validCount * base / 100
	if validCount > 10 {
		frequencyBonus = base * 10 / 100
	}

	reputationBonus := 0
	if s.Reputation >= reputationBonusFloor {
		mult := 1000 + (s.Reputation-reputationBonusFloor)*1000/120
		maxMult := configInt(ctx, govconst.MaxReputationMultiplierKey)
		if mult > maxMult {
			mult = maxMult
		}
		reputationBonus = base * (mult - 1000) / 1000
	}

	total := base*qualityMultiplier/1000 + frequencyBonus + reputationBonus

	now := runtime.GetTime()
	c := RewardClaim{
		SensorID:          sensorID,
		Period:            period,
		Amount:            total,
		Base:              base,
		QualityMultiplier: qualityMultiplier,
		FrequencyBonus:    frequencyBonus,
		ReputationBonus:   reputationBonus,
		ClaimableAfter:    now + configInt(ctx, govconst.LockupPeriodKey),
	}

	common.SetSerialized(ctx, claimKey(sensorID, period), c)
	storage.Put(ctx, pKey, period)

	runtime.Log("reward has been calculated")
	runtime.Notify("RewardCalculated", sensorID, period, total)

	return total
}

// Claim pays out a matured reward entitlement to the current sensor owner
// from the pooled contract account. The payout and the claimed mark commit
// in the same transaction: an insufficient pool aborts the whole operation.
// Can be invoked only by the current sensor owner.
func Claim(sensorID []byte, period int) {
	ctx := storage.GetContext()

	owner := getSensorRecord(ctx, sensorID).Owner
	common.CheckOwnerWitness(owner)

	c := getClaim(ctx, sensorID, period)
	if c.Claimed {
		panic(AlreadyClaimedError)
	}
	if runtime.GetTime() < c.ClaimableAfter {
		panic(LockupError)
	}

	c.Claimed = true
	common.SetSerialized(ctx, claimKey(sensorID, period), c)

	if !gas.Transfer(runtime.GetExecutingScriptHash(), owner, c.Amount, nil) {
		panic("failed to transfer reward, aborting")
	}

	runtime.Log("reward has been claimed")
	runtime.Notify("RewardClaimed", sensorID, period, owner, c.Amount)
}

// BatchClaim applies the Claim rules to every period of the batch, skipping
// periods failing any precondition instead of aborting their siblings, and
// pays the accumulated amount with a single transfer. Returns the number of
// claimed periods. Can be invoked only by the current sensor owner.
func BatchClaim(sensorID []byte, periods []int) int {
	ctx := storage.GetContext()

	owner := getSensorRecord(ctx, sensorID).Owner
	common.CheckOwnerWitness(owner)

	now := runtime.GetTime()

	total := 0
	claimed := 0
	for i := range periods {
		data := storage.Get(ctx, claimKey(sensorID, periods[i]))
		if data == nil {
			continue
		}

		c := std.Deserialize(data.([]byte)).(RewardClaim)
		if c.Claimed {
			continue
		}
		if now < c.ClaimableAfter {
			continue
		}

		c.Claimed = true
		common.SetSerialized(ctx, claimKey(sensorID, periods[i]), c)

		total += c.Amount
		claimed++

		runtime.Notify("RewardClaimed", sensorID, periods[i], owner, c.Amount)
	}

	if claimed == 0 {
		return 0
	}

	if !gas.Transfer(runtime.GetExecutingScriptHash(), owner, total, nil) {
		panic("failed to transfer reward, aborting")
	}

	runtime.Log("rewards have been claimed")

	return claimed
}

// GetClaim returns the reward entitlement of the sensor for the period.
//
// If there is no such entitlement, it panics with NotFoundError.
func GetClaim(sensorID []byte, period int) RewardClaim {
	ctx := storage.GetReadOnlyContext()
	return getClaim(ctx, sensorID, period)
}

// Claimable returns unclaimed entitlements of the sensor that are past
// their lockup.
func Claimable(sensorID []byte) []RewardClaim {
	ctx := storage.GetReadOnlyContext()

	now := runtime.GetTime()

	var result []RewardClaim

	it := storage.Find(ctx, append([]byte{claimKeyPrefix}, sensorID...),
		storage.ValuesOnly|storage.DeserializeValues)
	for iterator.Next(it) {
		c := iterator.Value(it).(RewardClaim)
		if c.Claimed || now < c.ClaimableAfter {
			continue
		}
		result = append(result, c)
	}

	return result
}

// LastRewardedPeriod returns the last period the sensor was rewarded for,
// zero if it never was.
func LastRewardedPeriod(sensorID []byte) int {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, lastPeriodKey(sensorID))
	if data == nil {
		return 0
	}

	return data.(int)
}

// Pool returns the amount of GAS pooled in the contract account.
func Pool() int {
	return gas.BalanceOf(runtime.GetExecutingScriptHash())
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
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

func getClaim(ctx storage.Context, sensorID []byte, period int) RewardClaim {
	data := storage.Get(ctx, claimKey(sensorID, period))
	if data == nil {
		panic(NotFoundError)
	}

	return std.Deserialize(data.([]byte)).(RewardClaim)
}

func claimKey(sensorID []byte, period int) []byte {
	key := append([]byte{claimKeyPrefix}, sensorID...)
	return append(key, convert.ToBytes(period)...)
}

func lastPeriodKey(sensorID []byte) []byte {
	return append([]byte{lastPeriodKeyPrefix}, sensorID...)
}
