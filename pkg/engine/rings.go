package engine

// operationRings is the static operation-to-rings table. Create and update
// traverse every stage; delete skips input validation and type mapping; find
// runs security, storage, decode and post-processing. Operations absent from
// the table default to the storage ring only.
var operationRings = map[Operation][]Ring{
	OperationCreate: {RingBootstrap, RingValidate, RingSecure, RingBusiness, RingEncode, RingStore, RingDecode, RingEnrich, RingPost, RingNotify},
	OperationUpdate: {RingBootstrap, RingValidate, RingSecure, RingBusiness, RingEncode, RingStore, RingDecode, RingEnrich, RingPost, RingNotify},
	OperationDelete: {RingBootstrap, RingSecure, RingBusiness, RingStore, RingNotify},
	OperationFind:   {RingBootstrap, RingSecure, RingStore, RingDecode, RingPost},
}

// RingsFor returns the ordered ring subset relevant to op. Unknown operations
// get the storage ring only.
func RingsFor(op Operation) []Ring {
	if rings, ok := operationRings[op]; ok {
		return rings
	}
	return []Ring{RingStore}
}
