// Command statcore exports statistical model workspaces to HS3 JSON
// documents and manages the exported documents.
//
// Usage:
//
//	statcore export --model model.yaml --out model.json
//	statcore example gauss --out gauss.json
//	statcore inspect gauss.json
//	statcore diff old.json new.json
//	statcore catalog list
//	statcore docs files docs/
//	statcore config init
package main
