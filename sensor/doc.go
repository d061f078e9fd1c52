/*
Package sensor contains implementation of Sensor contract deployed in the
sensornet chain.

Sensor contract is the device registry of the network. Each environmental
sensor is represented by a record holding its owner, an opaque metadata
reference, a bounded reputation score, an active flag and a counter of
accepted data submissions. Reputation and the submission counter are mutated
exclusively by the Submission contract as validation outcomes arrive; the
registry itself performs no external I/O.

# Contract notifications

SensorRegistered notification. This notification is produced when a new
sensor is added to the registry.

	SensorRegistered
	  - name: id
	    type: ByteArray
	  - name: owner
	    type: Hash160

ActiveUpdated notification. This notification is produced when a sensor is
enabled or disabled for data submissions.

	ActiveUpdated
	  - name: id
	    type: ByteArray
	  - name: active
	    type: Boolean

OwnershipTransferred notification. This notification is produced when a
sensor moves between owner accounts.

	OwnershipTransferred
	  - name: id
	    type: ByteArray
	  - name: oldOwner
	    type: Hash160
	  - name: newOwner
	    type: Hash160

ReputationUpdated notification. This notification is produced when the
Submission contract adjusts a sensor reputation.

	ReputationUpdated
	  - name: id
	    type: ByteArray
	  - name: value
	    type: Integer
	  - name: reason
	    type: ByteArray
*/
package sensor

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'x<id>' -> std.Serialize(Sensor)
   registered sensor record
 - 'o<owner><id>' -> []byte
   sensor IDs of a fixed owner account
 - 'submissionScriptHash' -> interop.Hash160
   Submission contract reference, set on deploy

# Ownership index
The 'o' index is kept in sync with the Owner field of the serialized record:
TransferOwnership removes the old index entry and writes the new one in the
same transaction.
*/
