/*
Package reward contains implementation of Reward contract deployed in the
sensornet chain.

Reward contract turns validated submission activity into GAS payouts. The
validation oracle calculates an entitlement for a (sensor, period) pair from
the validated batch count and the quality score; the amount is a pure integer
function of the inputs, the sensor reputation and the current network
parameters, recorded with its full breakdown. Periods of a sensor are
rewarded in strictly increasing order and each entitlement is paid at most
once, to the current sensor owner, after the configured lockup. Payouts come
from a GAS pool funded through regular NEP-17 transfers to the contract
account.

# Contract notifications

RewardCalculated notification. Produced when the oracle records a new
entitlement.

	RewardCalculated
	  - name: sensorID
	    type: ByteArray
	  - name: period
	    type: Integer
	  - name: amount
	    type: Integer

RewardClaimed notification. Produced for every period paid out, both by
single and batch claims.

	RewardClaimed
	  - name: sensorID
	    type: ByteArray
	  - name: period
	    type: Integer
	  - name: owner
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package reward

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'c<sensorID><period>' -> std.Serialize(RewardClaim)
   reward entitlement, only the Claimed flag mutates after creation
 - 'p<sensorID>' -> int
   last period the sensor was rewarded for
 - 'sensorScriptHash' -> interop.Hash160
 - 'governanceScriptHash' -> interop.Hash160
 - 'oracle' -> interop.Hash160
   references set on deploy

# Pool
The reward pool is the GAS balance of the contract account. A claim whose
transfer fails aborts whole, leaving the entitlement unclaimed.
*/
