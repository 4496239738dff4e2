// Package endpoint owns the process-wide backend base address.
//
// The user enters either a bare host or IP ("192.168.1.100") or a full URL
// ("https://farm.example.com"). Normalize turns that raw value into an
// absolute base address ending in "/api/":
//
//	192.168.1.100             -> http://192.168.1.100:8000/api/
//	192.168.1.100:9000        -> http://192.168.1.100:9000/api/
//	https://farm.example.com  -> https://farm.example.com/api/
//	https://farm.example.com/ -> https://farm.example.com/api/
//
// The Registry keeps the normalized value in memory and the raw value in the
// durable metadata store. Init must complete before any network call is made;
// components read Endpoint on every request and never cache it.
package endpoint
