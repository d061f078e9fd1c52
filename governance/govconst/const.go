// Package govconst holds constants of the Governance contract shared with
// other sensornet contracts and host-side code.
package govconst

// Network parameter keys. All parameters are stored by the Governance
// contract and are writable only through an executed parameter proposal or a
// committee call. Durations are in milliseconds, ratios in basis points,
// amounts in fixed8 GAS units.
const (
	RewardBaseKey              = "RewardBase"
	LockupPeriodKey            = "LockupPeriod"
	MinReputationForRewardKey  = "MinReputationForReward"
	MaxReputationMultiplierKey = "MaxReputationMultiplier"
	VotingPeriodKey            = "VotingPeriod"
	TimelockPeriodKey          = "TimelockPeriod"
	ProposalThresholdKey       = "ProposalThreshold"
	QuorumThresholdKey         = "QuorumThreshold"
	MajorityThresholdKey       = "MajorityThreshold"
	ProposalCooldownKey        = "ProposalCooldown"
	MinSubmissionIntervalKey   = "MinSubmissionInterval"
	MaxSubmissionIntervalKey   = "MaxSubmissionInterval"
	ValidationTimeoutKey       = "ValidationTimeout"
)

// Proposal types.
const (
	ProposalParameterUpdate = 1
	ProposalText            = 2
)

// Vote choices.
const (
	VoteFor = iota + 1
	VoteAgainst
	VoteAbstain
)

// Proposal lifecycle states. Executed and Cancelled are terminal.
const (
	StateLive = iota + 1
	StateQueued
	StateExecuted
	StateCancelled
)
