package tests

import (
	"math/rand"
	"path"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	sensorPath     = "../sensor"
	submissionPath = "../submission"
	governancePath = "../governance"
	rewardPath     = "../reward"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func randomBytes(n int) []byte {
	a := make([]byte, n)
	rand.Read(a) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	return a
}

func newSensorID() []byte {
	id := uuid.New()
	return id[:]
}

type sensornetContracts struct {
	sensor     util.Uint160
	submission util.Uint160
	governance util.Uint160
	reward     util.Uint160
	oracle     neotest.Signer
}

// deploySensornetContracts deploys the whole contract suite. Script hashes
// are known before deployment, which resolves the circular sensor and
// submission references. Optional key/value pairs override governance
// parameter defaults.
func deploySensornetContracts(t *testing.T, e *neotest.Executor, config ...interface{}) sensornetContracts {
	oracle := e.NewAccount(t)

	ctrSensor := neotest.CompileFile(t, e.CommitteeHash, sensorPath, path.Join(sensorPath, "config.yml"))
	ctrSubmission := neotest.CompileFile(t, e.CommitteeHash, submissionPath, path.Join(submissionPath, "config.yml"))
	ctrGovernance := neotest.CompileFile(t, e.CommitteeHash, governancePath, path.Join(governancePath, "config.yml"))
	ctrReward := neotest.CompileFile(t, e.CommitteeHash, rewardPath, path.Join(rewardPath, "config.yml"))

	e.DeployContract(t, ctrGovernance, []interface{}{append([]interface{}{}, config...)})
	e.DeployContract(t, ctrSensor, []interface{}{ctrSubmission.Hash})
	e.DeployContract(t, ctrSubmission, []interface{}{ctrSensor.Hash, ctrGovernance.Hash, oracle.ScriptHash()})
	e.DeployContract(t, ctrReward, []interface{}{ctrSensor.Hash, ctrGovernance.Hash, oracle.ScriptHash()})

	return sensornetContracts{
		sensor:     ctrSensor.Hash,
		submission: ctrSubmission.Hash,
		governance: ctrGovernance.Hash,
		reward:     ctrReward.Hash,
		oracle:     oracle,
	}
}

type testSensor struct {
	id    []byte
	owner neotest.Signer
}

func registerSensor(t *testing.T, e *neotest.Executor, cnr sensornetContracts) testSensor {
	owner := e.NewAccount(t)
	c := e.NewInvoker(cnr.sensor, owner)
	id := newSensorID()
	c.Invoke(t, stackitem.Null{}, "register", id, owner.ScriptHash(), randomBytes(32))
	return testSensor{id: id, owner: owner}
}

// travelToTime adds an empty block so that the next invocation runs with the
// specified block time.
func travelToTime(t *testing.T, e *neotest.Executor, ts uint64) {
	b := e.NewUnsignedBlock(t)
	b.Timestamp = ts - 1 // test invoke is done with +1 timestamp
	require.NoError(t, e.Chain.AddBlock(e.SignBlock(b)))
}
