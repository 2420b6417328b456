package cms

// Every query is parameterised; values are never interpolated into the text.
// Projections rename _id to id so rows decode straight into model types.
const (
	personProjection    = `{"id": _id, fullName, initials, color, location}`
	summaryBookingShape = `{"id": _id, startDate, endDate, note, "person": person->` + personProjection + `}`

	qActivePeople = `*[_type=="person" && active==true] | order(fullName asc)` + personProjection

	qActiveEquipment = `*[_type=="equipment" && active==true] | order(name asc){
  "id": _id, name, assetNumber, serialNumber, calibrationDueAt
}`

	qCalendarBookings = `*[_type=="booking" && equipment._ref == $eqId &&
  startDate <= $monthEnd && endDate >= $monthStart
] | order(startDate asc){
  "id": _id, startDate, endDate, note,
  "person": person->` + personProjection + `
}`

	qMatrixBookings = `*[_type=="booking" &&
  startDate <= $monthEnd && endDate >= $monthStart
] | order(startDate asc){
  "id": _id, startDate, endDate,
  "equipment": equipment->{"id": _id, name},
  "person": person->{"id": _id, initials, color}
}`

	qReportRows = `*[_type=="booking" && startDate <= $end && endDate >= $start]{
  "id": _id,
  startDate,
  endDate,
  note,
  "personName": person->fullName,
  "equipmentId": equipment->_id,
  "equipmentName": equipment->name,
  "assetNumber": equipment->assetNumber
} | order(assetNumber asc, startDate asc)`

	qCountOverlapping = `count(*[_type=="booking" && equipment._ref == $eqId && _id != $excludeId &&
  startDate <= $end && endDate >= $start
])`

	qGetBooking = `*[_type=="booking" && _id==$id][0]{
  "id": _id, "equipmentId": equipment._ref, "personId": person._ref, startDate, endDate, note
}`

	qDocumentType = `*[_id==$id][0]._type`

	qCurrentBooking = `*[_type=="booking" && equipment._ref == $eqId && startDate <= $day && endDate >= $day]
  | order(startDate asc)[0]` + summaryBookingShape

	qLastBooking = `*[_type=="booking" && equipment._ref == $eqId && endDate < $day]
  | order(endDate desc)[0]` + summaryBookingShape

	qNextBooking = `*[_type=="booking" && equipment._ref == $eqId && startDate > $day]
  | order(startDate asc)[0]` + summaryBookingShape

	qDeleteBooking = `*[_type=="booking" && _id==$id]`

	qPing = `count(*[_type=="equipment"][0...1])`
)
