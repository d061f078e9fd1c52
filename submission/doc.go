/*
Package submission contains implementation of Submission contract deployed
in the sensornet chain.

Submission contract is the admission gate for sensor data batches. A batch
itself lives in content-addressed storage; the contract records only the
opaque storage reference and the content hash and never reads payload bytes.
Admission enforces global replay protection (a reference or hash accepted
once is rejected forever, from any sensor) and the per-sensor submission
interval window. The validation oracle later confirms or rejects pending
submissions, which drives sensor reputation through the Sensor contract:
+1 for a valid batch, -5 for an invalid one.

# Contract notifications

SubmissionAdded notification. Produced when a data batch reference is
accepted.

	SubmissionAdded
	  - name: sensorID
	    type: ByteArray
	  - name: storageRef
	    type: ByteArray

SubmissionValidated notification. Produced when the oracle verdict for a
pending submission is recorded.

	SubmissionValidated
	  - name: sensorID
	    type: ByteArray
	  - name: storageRef
	    type: ByteArray
	  - name: valid
	    type: Boolean
*/
package submission

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'x<storageRef>' -> std.Serialize(Submission)
   accepted submission record, immutable after validation, never deleted
 - 'h<contentHash>' -> []byte
   storage reference that brought the content hash, replay guard
 - 't<sensorID>' -> int
   block time (ms) of the last accepted submission of the sensor
 - 'sensorScriptHash' -> interop.Hash160
 - 'governanceScriptHash' -> interop.Hash160
 - 'oracle' -> interop.Hash160
   references set on deploy

# Replay protection
Submission records and content hash markers are never removed, so the
uniqueness checks in Submit cover the whole history of the network, not a
sliding window.
*/
