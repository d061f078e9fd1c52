package tests

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/enviromesh/sensornet-contract/common"
	"github.com/enviromesh/sensornet-contract/governance/govconst"
	"github.com/enviromesh/sensornet-contract/reward"
	"github.com/enviromesh/sensornet-contract/sensor"
	"github.com/stretchr/testify/require"
)

const rewardBase = 10_0000_0000

func fundRewardPool(t *testing.T, e *neotest.Executor, cnr sensornetContracts, amount int64) {
	gasInvoker := e.CommitteeInvoker(e.NativeHash(t, nativenames.Gas))
	gasInvoker.Invoke(t, true, "transfer",
		gasInvoker.Committee.ScriptHash(), cnr.reward, amount, nil)
}

func claimableAfter(t *testing.T, c *neotest.ContractInvoker, id []byte, period int) uint64 {
	s, err := c.TestInvoke(t, "getClaim", id, period)
	require.NoError(t, err)
	return s.Top().Array()[7].Value().(*big.Int).Uint64()
}

func TestCalculateReward(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e)
	c := e.CommitteeInvoker(cnr.reward)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)

	s1 := registerSensor(t, e, cnr)
	cSensorOwner := e.NewInvoker(cnr.sensor, s1.owner)

	c.InvokeFail(t, common.ErrOracleWitnessFailed, "calculateReward", s1.id, 1, 12, 800)
	cOracle.InvokeFail(t, "negative submission count", "calculateReward", s1.id, 1, -1, 800)
	cOracle.InvokeFail(t, "quality score is out of range", "calculateReward", s1.id, 1, 12, 1001)
	cOracle.InvokeFail(t, sensor.NotFoundError, "calculateReward", newSensorID(), 1, 12, 800)

	cSensorOwner.Invoke(t, stackitem.Null{}, "setActive", s1.id, false)
	cOracle.InvokeFail(t, reward.InactiveError, "calculateReward", s1.id, 1, 12, 800)
	cSensorOwner.Invoke(t, stackitem.Null{}, "setActive", s1.id, true)

	// base 10 GAS, quality 800 -> x1.4, 12 batches cap the frequency bonus
	// at 10%, reputation 100 -> x1.166 bonus part
	h := cOracle.Invoke(t, 16_6600_0000, "calculateReward", s1.id, 1, 12, 800)
	aer := cOracle.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "RewardCalculated", aer.Events[0].Name)

	s, err := c.TestInvoke(t, "getClaim", s1.id, 1)
	require.NoError(t, err)
	fields := s.Top().Array()
	require.Equal(t, s1.id, fields[0].Value())
	require.Equal(t, big.NewInt(1), fields[1].Value())
	require.Equal(t, big.NewInt(16_6600_0000), fields[2].Value())
	require.Equal(t, big.NewInt(rewardBase), fields[3].Value())
	require.Equal(t, big.NewInt(1400), fields[4].Value())
	require.Equal(t, big.NewInt(1_0000_0000), fields[5].Value())
	require.Equal(t, big.NewInt(1_6600_0000), fields[6].Value())
	require.Equal(t, false, fields[8].Value())

	c.Invoke(t, 1, "lastRewardedPeriod", s1.id)

	cOracle.InvokeFail(t, reward.StalePeriodError, "calculateReward", s1.id, 1, 12, 800)
	cOracle.InvokeFail(t, reward.StalePeriodError, "calculateReward", s1.id, 0, 12, 800)

	// below 11 batches the frequency bonus is proportional
	cOracle.Invoke(t, 12_1600_0000, "calculateReward", s1.id, 2, 5, 0)

	c.InvokeFail(t, reward.NotFoundError, "getClaim", s1.id, 99)
}

func TestCalculateRewardReputationGate(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e,
		govconst.MinSubmissionIntervalKey, testMinInterval,
		govconst.MinReputationForRewardKey, 100,
	)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)
	cSubOracle := e.NewInvoker(cnr.submission, cnr.oracle)

	s1 := registerSensor(t, e, cnr)
	cOwner := e.NewInvoker(cnr.submission, s1.owner)

	cOracle.Invoke(t, 16_6600_0000, "calculateReward", s1.id, 1, 12, 800)

	// one rejected batch drops the sensor below the threshold
	b := dummyBatch()
	cOwner.Invoke(t, stackitem.Null{}, "submit", s1.id, b.storageRef, b.keyRef, b.contentHash)
	cSubOracle.Invoke(t, stackitem.Null{}, "validate", s1.id, b.storageRef, false, []byte{})

	cOracle.InvokeFail(t, reward.LowReputationError, "calculateReward", s1.id, 2, 12, 800)
}

func TestCalculateRewardMultiplierCap(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e,
		govconst.MaxReputationMultiplierKey, 1100,
	)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)

	s1 := registerSensor(t, e, cnr)

	// the configured cap shrinks the reputation bonus to 10% of the base
	cOracle.Invoke(t, 16_0000_0000, "calculateReward", s1.id, 1, 12, 800)
}

func TestClaim(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e)
	c := e.CommitteeInvoker(cnr.reward)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)

	fundRewardPool(t, e, cnr, 100_0000_0000)
	c.Invoke(t, 100_0000_0000, "pool")

	s1 := registerSensor(t, e, cnr)
	cOwner := e.NewInvoker(cnr.reward, s1.owner)

	cOracle.Invoke(t, 16_6600_0000, "calculateReward", s1.id, 1, 12, 800)

	c.InvokeFail(t, common.ErrOwnerWitnessFailed, "claim", s1.id, 1)

	after := claimableAfter(t, c, s1.id, 1)
	travelToTime(t, e, after-1)
	cOwner.InvokeFail(t, reward.LockupError, "claim", s1.id, 1)

	h := cOwner.Invoke(t, stackitem.Null{}, "claim", s1.id, 1)
	aer := cOwner.CheckHalt(t, h)
	found := false
	for _, ev := range aer.Events {
		if ev.Name == "RewardClaimed" {
			found = true
		}
	}
	require.True(t, found)

	c.Invoke(t, 100_0000_0000-16_6600_0000, "pool")

	s, err := c.TestInvoke(t, "getClaim", s1.id, 1)
	require.NoError(t, err)
	require.Equal(t, true, s.Top().Array()[8].Value())

	cOwner.InvokeFail(t, reward.AlreadyClaimedError, "claim", s1.id, 1)
}

func TestClaimInsufficientPool(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e)
	c := e.CommitteeInvoker(cnr.reward)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)

	s1 := registerSensor(t, e, cnr)
	cOwner := e.NewInvoker(cnr.reward, s1.owner)

	cOracle.Invoke(t, 16_6600_0000, "calculateReward", s1.id, 1, 12, 800)
	travelToTime(t, e, claimableAfter(t, c, s1.id, 1))

	cOwner.InvokeFail(t, "failed to transfer reward", "claim", s1.id, 1)

	// the failed payout left the entitlement intact
	s, err := c.TestInvoke(t, "getClaim", s1.id, 1)
	require.NoError(t, err)
	require.Equal(t, false, s.Top().Array()[8].Value())
}

func TestClaimAfterOwnershipTransfer(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e)
	c := e.CommitteeInvoker(cnr.reward)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)

	fundRewardPool(t, e, cnr, 100_0000_0000)

	s1 := registerSensor(t, e, cnr)
	newOwner := e.NewAccount(t)

	cOracle.Invoke(t, 16_6600_0000, "calculateReward", s1.id, 1, 12, 800)
	travelToTime(t, e, claimableAfter(t, c, s1.id, 1))

	e.NewInvoker(cnr.sensor, s1.owner).Invoke(t, stackitem.Null{},
		"transferOwnership", s1.id, newOwner.ScriptHash())

	// rewards follow the sensor, not the owner at calculation time
	e.NewInvoker(cnr.reward, s1.owner).InvokeFail(t, common.ErrOwnerWitnessFailed, "claim", s1.id, 1)
	e.NewInvoker(cnr.reward, newOwner).Invoke(t, stackitem.Null{}, "claim", s1.id, 1)
}

func TestBatchClaim(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e)
	c := e.CommitteeInvoker(cnr.reward)
	cOracle := e.NewInvoker(cnr.reward, cnr.oracle)

	fundRewardPool(t, e, cnr, 100_0000_0000)

	s1 := registerSensor(t, e, cnr)
	cOwner := e.NewInvoker(cnr.reward, s1.owner)

	// base + 1% frequency bonus + 16.6% reputation bonus each
	const amount = 11_7600_0000
	cOracle.Invoke(t, amount, "calculateReward", s1.id, 1, 1, 0)
	cOracle.Invoke(t, amount, "calculateReward", s1.id, 2, 1, 0)
	cOracle.Invoke(t, amount, "calculateReward", s1.id, 3, 1, 0)

	travelToTime(t, e, claimableAfter(t, c, s1.id, 3))

	s, err := c.TestInvoke(t, "claimable", s1.id)
	require.NoError(t, err)
	require.Equal(t, 3, len(s.Top().Array()))

	cOwner.Invoke(t, stackitem.Null{}, "claim", s1.id, 2)

	// the claimed and the unknown periods are skipped
	h := cOwner.Invoke(t, 2, "batchClaim", s1.id, []interface{}{1, 2, 3, 99})
	aer := cOwner.CheckHalt(t, h)
	claimed := 0
	for _, ev := range aer.Events {
		if ev.Name == "RewardClaimed" {
			claimed++
		}
	}
	require.Equal(t, 2, claimed)

	c.Invoke(t, 100_0000_0000-3*amount, "pool")
	cOwner.Invoke(t, 0, "batchClaim", s1.id, []interface{}{1, 2, 3})

	s, err = c.TestInvoke(t, "claimable", s1.id)
	require.NoError(t, err)
	require.True(t, s.Top().Item().Equals(stackitem.Null{}))
}

func TestRewardVersion(t *testing.T) {
	e := newExecutor(t)
	cnr := deploySensornetContracts(t, e)
	e.CommitteeInvoker(cnr.reward).Invoke(t, common.Version, "version")
}
