// Package azure talks to Azure Cognitive Services: Computer Vision OCR,
// Translator and Speech.
//
// Every client is built from an explicit endpoint URL and subscription key;
// none of them read the environment.
package azure
