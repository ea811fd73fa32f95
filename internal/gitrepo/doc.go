// Package gitrepo reads state from individual git repositories of a checkout.
//
// HeadResolver reports the commit checked out in a repository, either by
// invoking git through execshell or by opening the repository in-process with
// go-git. Both are used for the manifest repository of a multi-repository
// checkout.
package gitrepo
