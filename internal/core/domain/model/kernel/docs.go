// Package kernel holds the value objects shared by the order and parcel models:
// identifiers (UUID, ShortCode), money and the contact/address pair used for
// senders and recipients.
//
// Values are immutable. Constructors validate their input and report every
// failing field at once through errors.Join; a zero value fails Validate.
package kernel
