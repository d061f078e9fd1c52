/*
Package governance contains implementation of Governance contract deployed
in the sensornet chain.

Governance contract manages the stake-weighted decision making of the
network. Accounts lock GAS in the contract to obtain voting power, may
direct that power to a delegate (one active delegation per account) and move
proposals through the Live -> Queued -> Executed lifecycle. Queueing
requires the voting window to be over, the quorum fraction of total stake to
have voted and for-votes to hold the majority among decisive votes;
execution additionally waits out the timelock. Every form of waiting is a
stored-timestamp comparison against block time, nothing is scheduled.

The contract also hosts the network parameter table read by the Submission
and Reward contracts. Parameters change either through an executed parameter
proposal or directly by committee; both paths share the same range checks.

# Contract notifications

Stake notification. Produced when a holder locks GAS for voting power.

	Stake
	  - name: holder
	    type: Hash160
	  - name: amount
	    type: Integer

Unstake notification. Produced when a holder releases locked GAS.

	Unstake
	  - name: holder
	    type: Hash160
	  - name: amount
	    type: Integer

DelegationUpdated notification. Produced when a delegator sets or replaces
its delegation slot.

	DelegationUpdated
	  - name: delegator
	    type: Hash160
	  - name: delegate
	    type: Hash160
	  - name: amount
	    type: Integer

DelegationRemoved notification. Produced when a delegator withdraws the
active delegation.

	DelegationRemoved
	  - name: delegator
	    type: Hash160
	  - name: delegate
	    type: Hash160
	  - name: amount
	    type: Integer

ProposalCreated notification.

	ProposalCreated
	  - name: id
	    type: Integer
	  - name: proposer
	    type: Hash160
	  - name: type
	    type: Integer

VoteCast notification.

	VoteCast
	  - name: id
	    type: Integer
	  - name: voter
	    type: Hash160
	  - name: choice
	    type: Integer
	  - name: weight
	    type: Integer

ProposalQueued, ProposalExecuted and ProposalCancelled notifications mark
lifecycle transitions; ProposalExecuted carries the outcome of the executed
action.
*/
package governance

/*
Contract storage model.

# Summary
Key-value storage format:
 - 's<holder>' -> int
   locked stake of the holder
 - 'totalStake' -> int
   sum of all per-holder stakes
 - 'd<delegator>' -> std.Serialize(Delegation)
   delegation slot of the delegator, Active reports whether it counts
 - 'r<delegate>' -> int
   voting power received by the delegate through active delegations
 - 'x<id>' -> std.Serialize(Proposal)
   proposal record, id is an integer in native VM encoding
 - 'v<id><voter>' -> std.Serialize(Vote)
   cast vote with the weight fixed at cast time
 - 'l<proposer>' -> int
   block time (ms) of the last proposal of the account, drives the cooldown
 - 'proposalCount' -> int
   monotonically increasing proposal ID counter
 - 'config<name>' -> int
   network parameter table

# Proposals
A Live proposal past its voting window that missed quorum or majority is
never transitioned by time alone: QueueProposal re-evaluates the guards on
every call and keeps failing, which makes the proposal permanently
un-queueable while it formally stays Live.
*/
