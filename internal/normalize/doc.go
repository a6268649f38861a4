// Package normalize converts vendor records into the unified device model.
//
// Normalizers never fail on partially populated records: absent sub-fields
// fall back to defaults and simply do not contribute a capability. External
// ids come from the slug translator; the vendor id is kept only in the
// VendorRef back-reference.
package normalize
