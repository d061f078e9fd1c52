package governance

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
	// Proposal is a governance decision moving through the
	// Live -> Queued -> Executed lifecycle. Vote weights are fixed at cast
	// time, Start/End/QueuedAt are block times in milliseconds.
	Proposal struct {
		ID           int
		Proposer     interop.Hash160
		Type         int
		Key          []byte
		Value        int
		PayloadRef   []byte
		Start        int
		End          int
		QueuedAt     int
		VotesFor     int
		VotesAgainst int
		VotesAbstain int
		State        int
		ExecOK       bool
	}

	// Delegation is a single-slot transfer of voting power from a
	// delegator to a delegate. A delegator has at most one active
	// delegation.
	Delegation struct {
		Delegate interop.Hash160
		Amount   int
		Active   bool
	}

	// Vote is a single cast vote with the weight the voter had at cast
	// time.
	Vote struct {
		Choice int
		Weight int
		Time   int
	}

	record struct {
		key []byte
		val []byte
	}
)

const (
	// NotFoundError is returned by methods resolving a proposal ID when
	// there is no such proposal.
	NotFoundError = "proposal not found"
	// NotLiveError is returned by voting and queueing methods when the
	// proposal left the Live state.
	NotLiveError = "proposal is not live"
	// NotQueuedError is returned by ExecuteProposal for a proposal that
	// is not in the Queued state.
	NotQueuedError = "proposal is not queued"
	// AlreadyVotedError is returned by CastVote on a repeated vote from
	// the same account.
	AlreadyVotedError = "already voted"
	// QuorumError is returned by QueueProposal when total cast weight is
	// below the quorum fraction of total stake.
	QuorumError = "quorum not reached"
	// MajorityError is returned by QueueProposal when for-votes do not
	// reach the majority fraction of decisive votes.
	MajorityError = "majority not reached"

	totalStakeKey    = "totalStake"
	proposalCountKey = "proposalCount"

	stakeKeyPrefix        = 's'
	delegationKeyPrefix   = 'd'
	receivedKeyPrefix     = 'r'
	proposalKeyPrefix     = 'x'
	voteKeyPrefix         = 'v'
	lastProposalKeyPrefix = 'l'

	msPerHour = 3600 * 1000
	msPerDay  = 24 * msPerHour
)

var (
	configPrefix = []byte("config")
)

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Stake deposits arrive through it.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("governance contract accepts GAS only")
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

	storage.Put(ctx, totalStakeKey, 0)
	storage.Put(ctx, proposalCountKey, 0)

	setConfig(ctx, govconst.RewardBaseKey, 10_0000_0000)
	setConfig(ctx, govconst.LockupPeriodKey, msPerDay)
	setConfig(ctx, govconst.MinReputationForRewardKey, 30)
	setConfig(ctx, govconst.MaxReputationMultiplierKey, 2000)
	setConfig(ctx, govconst.VotingPeriodKey, 7*msPerDay)
	setConfig(ctx, govconst.TimelockPeriodKey, msPerDay)
	setConfig(ctx, govconst.ProposalThresholdKey, 100_0000_0000)
	setConfig(ctx, govconst.QuorumThresholdKey, 1000)
	setConfig(ctx, govconst.MajorityThresholdKey, 5000)
	setConfig(ctx, govconst.ProposalCooldownKey, msPerDay)
	setConfig(ctx, govconst.MinSubmissionIntervalKey, msPerHour)
	setConfig(ctx, govconst.MaxSubmissionIntervalKey, 7*msPerDay)
	setConfig(ctx, govconst.ValidationTimeoutKey, msPerDay)

	if data != nil {
		args := data.(struct {
			config []any
		})

		ln := len(args.config)
		if ln%2 != 0 {
			panic("bad configuration")
		}

		for i := 0; i < ln/2; i++ {
			key := args.config[i*2].([]byte)
			val := args.config[i*2+1].(int)

			setConfigChecked(ctx, key, val)
		}
	}

	runtime.Log("governance contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// by committee only.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("governance contract updated")
}

// Stake locks GAS of the holder in the contract account and increases the
// holder voting power by the same amount. Can be invoked only by the holder.
func Stake(holder interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if amount <= 0 {
		panic("non positive amount number")
	}

	common.CheckOwnerWitness(holder)

	if !gas.Transfer(holder, runtime.GetExecutingScriptHash(), amount, nil) {
		panic("failed to transfer stake, aborting")
	}

	putIntDelta(ctx, stakeKey(holder), amount)
	putIntDelta(ctx, []byte(totalStakeKey), amount)

	runtime.Log("stake has been locked")
	runtime.Notify("Stake", holder, amount)
}

// Unstake returns previously locked GAS to the holder and decreases the
// holder voting power. Can be invoked only by the holder.
func Unstake(holder interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if amount <= 0 {
		panic("non positive amount number")
	}

	common.CheckOwnerWitness(holder)

	staked := getInt(ctx, stakeKey(holder))
	if amount > staked {
		panic("insufficient stake")
	}

	putIntDelta(ctx, stakeKey(holder), -amount)
	putIntDelta(ctx, []byte(totalStakeKey), -amount)

	if !gas.Transfer(runtime.GetExecutingScriptHash(), holder, amount, nil) {
		panic("failed to return stake, aborting")
	}

	runtime.Log("stake has been released")
	runtime.Notify("Unstake", holder, amount)
}

// Delegate directs a part of the delegator's own stake as voting power to
// the delegate. A previously active delegation is withdrawn first, so a
// repeated call replaces the slot instead of stacking. Can be invoked only
// by the delegator.
func Delegate(delegator, to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if len(to) != interop.Hash160Len {
		panic("incorrect length of delegate script hash")
	}
	if delegator.Equals(to) {
		panic("self-delegation is not allowed")
	}
	if amount <= 0 {
		panic("non positive amount number")
	}

	common.CheckOwnerWitness(delegator)

	if amount > getInt(ctx, stakeKey(delegator)) {
		panic("insufficient stake")
	}

	d := getDelegation(ctx, delegator)
	if d.Active {
		putIntDelta(ctx, receivedKey(d.Delegate), -d.Amount)
	}

	d = Delegation{
		Delegate: to,
		Amount:   amount,
		Active:   true,
	}

	common.SetSerialized(ctx, delegationKey(delegator), d)
	putIntDelta(ctx, receivedKey(to), amount)

	runtime.Log("delegation has been set")
	runtime.Notify("DelegationUpdated", delegator, to, amount)
}

// RemoveDelegation withdraws the active delegation of the delegator,
// dropping the delegate power by exactly the delegated amount. Can be
// invoked only by the delegator.
func RemoveDelegation(delegator interop.Hash160) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(delegator)

	d := getDelegation(ctx, delegator)
	if !d.Active {
		panic("no active delegation")
	}

	putIntDelta(ctx, receivedKey(d.Delegate), -d.Amount)

	d.Active = false
	common.SetSerialized(ctx, delegationKey(delegator), d)

	runtime.Log("delegation has been removed")
	runtime.Notify("DelegationRemoved", delegator, d.Delegate, d.Amount)
}

// VotingPower returns own stake of the account plus power received through
// active delegations to it.
func VotingPower(addr interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getInt(ctx, stakeKey(addr)) + getInt(ctx, receivedKey(addr))
}

// StakeOf returns the amount of GAS the account locked in the contract.
func StakeOf(addr interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getInt(ctx, stakeKey(addr))
}

// TotalStake returns the sum of all per-holder stakes.
func TotalStake() int {
	ctx := storage.GetReadOnlyContext()
	return getInt(ctx, []byte(totalStakeKey))
}

// DelegationOf returns the last delegation record of the delegator. The
// record of a delegator that never delegated has a zero Delegate field and
// Active set to false.
func DelegationOf(delegator interop.Hash160) Delegation {
	ctx := storage.GetReadOnlyContext()
	return getDelegation(ctx, delegator)
}

// CreateProposal opens a new proposal with the voting window
// [now, now+VotingPeriod). The proposer must hold at least ProposalThreshold
// of voting power and be past the per-account cooldown. For parameter
// proposals key/value carry the update to apply on execution; payloadRef is
// an opaque reference to the proposal document in content-addressed storage.
// Returns the assigned proposal ID, IDs grow monotonically.
func CreateProposal(proposer interop.Hash160, pType int, key []byte, value int, payloadRef []byte) int {
	ctx := storage.GetContext()

	if pType != govconst.ProposalParameterUpdate && pType != govconst.ProposalText {
		panic("unsupported proposal type")
	}
	if pType == govconst.ProposalParameterUpdate && len(key) == 0 {
		panic("empty parameter key")
	}

	common.CheckOwnerWitness(proposer)

	if VotingPower(proposer) < getConfigInt(ctx, govconst.ProposalThresholdKey) {
		panic("insufficient voting power to propose")
	}

	now := runtime.GetTime()
	last := getInt(ctx, lastProposalKey(proposer))
	if last != 0 && now < last+getConfigInt(ctx, govconst.ProposalCooldownKey) {
		panic("proposal cooldown has not elapsed")
	}

	id := getInt(ctx, []byte(proposalCountKey)) + 1
	storage.Put(ctx, proposalCountKey, id)
	storage.Put(ctx, lastProposalKey(proposer), now)

	p := Proposal{
		ID:         id,
		Proposer:   proposer,
		Type:       pType,
		Key:        key,
		Value:      value,
		PayloadRef: payloadRef,
		Start:      now,
		End:        now + getConfigInt(ctx, govconst.VotingPeriodKey),
		State:      govconst.StateLive,
	}

	common.SetSerialized(ctx, proposalKey(id), p)

	runtime.Log("proposal has been created")
	runtime.Notify("ProposalCreated", id, proposer, pType)

	return id
}

// CastVote adds the voter's current voting power to the chosen tally of a
// Live proposal. Each account votes at most once per proposal and the weight
// is fixed at cast time. Can be invoked only by the voter.
func CastVote(id int, voter interop.Hash160, choice int) {
	ctx := storage.GetContext()

	if choice != govconst.VoteFor && choice != govconst.VoteAgainst && choice != govconst.VoteAbstain {
		panic("unsupported vote choice")
	}

	common.CheckOwnerWitness(voter)

	p := getProposal(ctx, id)
	if p.State != govconst.StateLive {
		panic(NotLiveError)
	}

	now := runtime.GetTime()
	if now >= p.End {
		panic("voting window is closed")
	}

	vKey := voteKey(id, voter)
	if storage.Get(ctx, vKey) != nil {
		panic(AlreadyVotedError)
	}

	weight := VotingPower(voter)
	if weight <= 0 {
		panic("no voting power")
	}

	switch choice {
	case govconst.VoteFor:
		p.VotesFor += weight
	case govconst.VoteAgainst:
		p.VotesAgainst += weight
	case govconst.VoteAbstain:
		p.VotesAbstain += weight
	}

	common.SetSerialized(ctx, vKey, Vote{Choice: choice, Weight: weight, Time: now})
	common.SetSerialized(ctx, proposalKey(id), p)

	runtime.Notify("VoteCast", id, voter, choice, weight)
}

// QueueProposal transitions a Live proposal whose voting window has closed
// into the Queued state, starting the execution timelock. The proposal must
// have reached both the quorum fraction of total stake and the majority
// fraction of decisive (for/against) votes. A Live proposal that misses the
// thresholds stays Live and simply can never be queued.
func QueueProposal(id int) {
	ctx := storage.GetContext()

	p := getProposal(ctx, id)
	if p.State != govconst.StateLive {
		panic(NotLiveError)
	}

	now := runtime.GetTime()
	if now <= p.End {
		panic("voting is still in progress")
	}

	totalVotes := p.VotesFor + p.VotesAgainst + p.VotesAbstain
	totalStake := getInt(ctx, []byte(totalStakeKey))
	if totalVotes*10000 < totalStake*getConfigInt(ctx, govconst.QuorumThresholdKey) {
		panic(QuorumError)
	}

	decisive := p.VotesFor + p.VotesAgainst
	if decisive == 0 || p.VotesFor*10000/decisive < getConfigInt(ctx, govconst.MajorityThresholdKey) {
		panic(MajorityError)
	}

	p.State = govconst.StateQueued
	p.QueuedAt = now
	common.SetSerialized(ctx, proposalKey(id), p)

	runtime.Log("proposal has been queued")
	runtime.Notify("ProposalQueued", id)
}

// ExecuteProposal executes a Queued proposal once its timelock has elapsed
// and transitions it to the terminal Executed state. The proposal is
// consumed even if the carried action fails: the outcome is recorded in the
// ExecOK field and returned to the caller, a repeated call panics with
// NotQueuedError.
func ExecuteProposal(id int) bool {
	ctx := storage.GetContext()

	p := getProposal(ctx, id)
	if p.State != govconst.StateQueued {
		panic(NotQueuedError)
	}

	now := runtime.GetTime()
	if now < p.QueuedAt+getConfigInt(ctx, govconst.TimelockPeriodKey) {
		panic("timelock has not elapsed")
	}

	ok := true
	if p.Type == govconst.ProposalParameterUpdate {
		ok = applyParameter(ctx, p.Key, p.Value)
	}

	p.State = govconst.StateExecuted
	p.ExecOK = ok
	common.SetSerialized(ctx, proposalKey(id), p)

	runtime.Log("proposal has been executed")
	runtime.Notify("ProposalExecuted", id, ok)

	return ok
}

// CancelProposal moves a Live or Queued proposal to the terminal Cancelled
// state. Can be invoked by the proposer or by committee.
func CancelProposal(id int) {
	ctx := storage.GetContext()

	p := getProposal(ctx, id)
	if p.State != govconst.StateLive && p.State != govconst.StateQueued {
		panic("proposal is in a terminal state")
	}

	if !runtime.CheckWitness(p.Proposer) {
		common.CheckCommitteeWitness()
	}

	p.State = govconst.StateCancelled
	common.SetSerialized(ctx, proposalKey(id), p)

	runtime.Log("proposal has been cancelled")
	runtime.Notify("ProposalCancelled", id)
}

// GetProposal returns the proposal record.
//
// If the proposal doesn't exist, it panics with NotFoundError.
func GetProposal(id int) Proposal {
	ctx := storage.GetReadOnlyContext()
	return getProposal(ctx, id)
}

// GetVote returns the vote cast by the voter on the proposal.
//
// If there is no such vote, it panics.
func GetVote(id int, voter interop.Hash160) Vote {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, voteKey(id, voter))
	if data == nil {
		panic("vote not found")
	}

	return std.Deserialize(data.([]byte)).(Vote)
}

// Config returns the value of the network parameter.
func Config(key []byte) any {
	ctx := storage.GetReadOnlyContext()
	return getConfig(ctx, key)
}

// SetConfig updates the network parameter applying the same range checks as
// an executed parameter proposal. It is the administrator bootstrap path and
// can be invoked by committee only.
func SetConfig(key []byte, val int) {
	common.CheckCommitteeWitness()

	ctx := storage.GetContext()

	setConfigChecked(ctx, key, val)

	runtime.Log("configuration has been updated")
}

// ListConfig returns the whole network parameter table.
func ListConfig() []record {
	ctx := storage.GetReadOnlyContext()

	var config []record

	it := storage.Find(ctx, configPrefix, storage.None)
	for iterator.Next(it) {
		pair := iterator.Value(it).([]any)
		key := pair[0].([]byte)
		val := pair[1].([]byte)
		r := record{key: key[len(configPrefix):], val: val}

		config = append(config, r)
	}

	return config
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// applyParameter performs a range-checked parameter update recovering from a
// failed check, so that a bad proposal is consumed instead of replayed.
func applyParameter(ctx storage.Context, key []byte, value int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	setConfigChecked(ctx, key, value)

	return true
}

func setConfigChecked(ctx storage.Context, key []byte, val int) {
	switch string(key) {
	case govconst.VotingPeriodKey:
		checkRange(val, msPerDay, 30*msPerDay)
	case govconst.TimelockPeriodKey:
		checkRange(val, msPerHour, 7*msPerDay)
	case govconst.QuorumThresholdKey:
		checkRange(val, 100, 5000)
	case govconst.MajorityThresholdKey:
		checkRange(val, 5000, 9000)
	case govconst.MinReputationForRewardKey:
		checkRange(val, 0, 100)
	case govconst.MaxReputationMultiplierKey:
		checkRange(val, 1000, 5000)
	case govconst.MinSubmissionIntervalKey:
		checkRange(val, 1, getConfigInt(ctx, govconst.MaxSubmissionIntervalKey))
	case govconst.MaxSubmissionIntervalKey:
		checkRange(val, getConfigInt(ctx, govconst.MinSubmissionIntervalKey), 365*msPerDay)
	case govconst.RewardBaseKey, govconst.LockupPeriodKey, govconst.ValidationTimeoutKey,
		govconst.ProposalThresholdKey, govconst.ProposalCooldownKey:
		if val <= 0 {
			panic("parameter value is out of range")
		}
	default:
		panic("unknown parameter")
	}

	setConfig(ctx, key, val)
}

func checkRange(val, min, max int) {
	if val < min || val > max {
		panic("parameter value is out of range")
	}
}

func getConfig(ctx storage.Context, key any) any {
	postfix := key.([]byte)
	storageKey := append(configPrefix, postfix...)

	return storage.Get(ctx, storageKey)
}

func getConfigInt(ctx storage.Context, key any) int {
	return getConfig(ctx, key).(int)
}

func setConfig(ctx storage.Context, key, val any) {
	postfix := key.([]byte)
	storageKey := append(configPrefix, postfix...)

	storage.Put(ctx, storageKey, val)
}

func getProposal(ctx storage.Context, id int) Proposal {
	data := storage.Get(ctx, proposalKey(id))
	if data == nil {
		panic(NotFoundError)
	}

	return std.Deserialize(data.([]byte)).(Proposal)
}

func getDelegation(ctx storage.Context, delegator interop.Hash160) Delegation {
	data := storage.Get(ctx, delegationKey(delegator))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Delegation)
	}

	return Delegation{}
}

func getInt(ctx storage.Context, key []byte) int {
	data := storage.Get(ctx, key)
	if data != nil {
		return data.(int)
	}

	return 0
}

func putIntDelta(ctx storage.Context, key []byte, delta int) {
	storage.Put(ctx, key, getInt(ctx, key)+delta)
}

func stakeKey(holder interop.Hash160) []byte {
	return append([]byte{stakeKeyPrefix}, holder...)
}

func delegationKey(delegator interop.Hash160) []byte {
	return append([]byte{delegationKeyPrefix}, delegator...)
}

func receivedKey(delegate interop.Hash160) []byte {
	return append([]byte{receivedKeyPrefix}, delegate...)
}

func proposalKey(id int) []byte {
	return append([]byte{proposalKeyPrefix}, convert.ToBytes(id)...)
}

func voteKey(id int, voter interop.Hash160) []byte {
	key := append([]byte{voteKeyPrefix}, convert.ToBytes(id)...)
	return append(key, voter...)
}

func lastProposalKey(proposer interop.Hash160) []byte {
	return append([]byte{lastProposalKeyPrefix}, proposer...)
}
