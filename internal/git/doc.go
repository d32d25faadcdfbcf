// Package git inspects the local repository a workshop lives in so that
// configuration defaults can point at the right GitHub repository and branch.
package git
